package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/mvpshare/internal/app"
	"github.com/okian/mvpshare/internal/config"
	"github.com/okian/mvpshare/pkg/logger"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Rank one season with a model trained on every earlier season",
	Long: `Predict trains a single model on every season before --year and ranks the
players of that season by predicted vote share. When the season carries actual
shares the ranking is also scored; a season whose shares are still empty is
ranked only.

Example:
  mvpshare predict --input seasons.csv --year 2021 --top 10`,
	RunE: runPredict,
}

var (
	predictYear int
	predictTop  int
)

func init() {
	rootCmd.AddCommand(predictCmd)
	flags := predictCmd.Flags()
	flags.StringVar(&inputPath, "input", "", "season CSV path (overrides input_path)")
	flags.StringVar(&rowFilter, "filter", "", "CEL row filter, e.g. 'row.Year >= 1990' (overrides row_filter)")
	flags.IntVar(&cutoff, "cutoff", config.DefaultCutoff, "K in precision at K")
	flags.StringVar(&outputPath, "output", "", "forecast CSV path (overrides output_path)")
	flags.IntVar(&predictYear, "year", 0, "target season")
	flags.IntVar(&predictTop, "top", 10, "players printed, 0 prints none")
	_ = predictCmd.MarkFlagRequired("year")
}

func runPredict(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	svc := service.New(service.WithConfig(cfg), service.WithLogger(log.Named("service")))
	fc, err := svc.Predict(ctx, predictYear)
	if err != nil {
		log.Error(ctx, "predict failed", logger.Int("year", predictYear), logger.Error(err))
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "year=%d train_rows=%d scored=%t", fc.Year, fc.TrainRows, fc.Scored)
	if fc.Scored {
		fmt.Fprintf(out, " precision=%.4f top_mse=%.6f", fc.Precision, fc.TopMSE)
	}
	fmt.Fprintf(out, " run_id=%s\n", fc.RunID)

	for _, r := range fc.Rows[:min(max(predictTop, 0), len(fc.Rows))] {
		fmt.Fprintf(out, "%3d  %-28s predicted=%.4f", r.PredictedRank, r.Player, r.Predicted)
		if fc.Scored {
			fmt.Fprintf(out, " share=%.4f actual_rank=%d", r.Share, r.ActualRank)
		}
		fmt.Fprintln(out)
	}
	return nil
}
