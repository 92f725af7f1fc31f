package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/mvpshare/internal/app"
	"github.com/okian/mvpshare/internal/config"
	"github.com/okian/mvpshare/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the backtest once and write its outputs",
	Long: `Run loads the season file, evaluates every season after the warmup and
writes the enabled outputs: the predictions CSV, the YAML or JSON summary,
the Postgres table and the Prometheus textfile.

Example:
  mvpshare run --input seasons.csv --output predictions.csv --summary summary.json`,
	RunE: runBacktest,
}

var (
	inputPath   string
	outputPath  string
	summaryPath string
	metricsPath string
	rowFilter   string
	warmup      int
	cutoff      int
)

func init() {
	rootCmd.AddCommand(runCmd)
	addPipelineFlags(runCmd)
	runCmd.Flags().StringVar(&outputPath, "output", "", "predictions CSV path (overrides output_path)")
	runCmd.Flags().StringVar(&summaryPath, "summary", "", "summary path; .json writes JSON, anything else YAML (overrides summary_path)")
	runCmd.Flags().StringVar(&metricsPath, "metrics-file", "", "Prometheus textfile path (overrides metrics_path)")
}

// addPipelineFlags registers the flags shared by run and serve.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&inputPath, "input", "", "season CSV path (overrides input_path)")
	cmd.Flags().StringVar(&rowFilter, "filter", "", "CEL row filter, e.g. 'row.Year >= 1990' (overrides row_filter)")
	cmd.Flags().IntVar(&warmup, "warmup", config.DefaultWarmup, "seasons used only as history")
	cmd.Flags().IntVar(&cutoff, "cutoff", config.DefaultCutoff, "K in precision at K")
}

// applyFlags copies explicitly set flags over cfg and revalidates it.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("input", func() { cfg.InputPath = inputPath })
	set("filter", func() { cfg.RowFilter = rowFilter })
	set("warmup", func() { cfg.Warmup = warmup })
	set("cutoff", func() { cfg.Cutoff = cutoff })
	set("output", func() { cfg.OutputPath = outputPath })
	set("summary", func() { cfg.SummaryPath = summaryPath })
	set("metrics-file", func() { cfg.MetricsPath = metricsPath })
	set("addr", func() { cfg.Addr = addr })

	if cfg.InputPath == "" {
		return fmt.Errorf("%w: no input file; set --input or input_path", config.ErrInvalidConfig)
	}
	return cfg.Validate()
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	svc := service.New(service.WithConfig(cfg), service.WithLogger(log.Named("service")))
	res, err := svc.Run(ctx)
	if err != nil {
		log.Error(ctx, "backtest failed", logger.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seasons=%d skipped=%d mean_precision=%.4f run_id=%s\n",
		len(res.Years), len(res.Skipped), res.MeanPrecision, res.RunID)
	return nil
}
