// Package commands wires the mvpshare command line.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/mvpshare/internal/config"
	"github.com/okian/mvpshare/pkg/logger"
	"github.com/okian/mvpshare/pkg/metrics"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "mvpshare",
	Short: "Walk-forward backtest of MVP vote share models",
	Long: `mvpshare trains a fresh model per season on every earlier season,
ranks the held-out season by predicted vote share and scores how many of the
true top five the model found.

Configuration is layered: defaults, .env, the --config YAML file and
MVPSHARE_* environment variables. Command flags override all of them.

Examples:
  mvpshare generate --out seasons.csv
  mvpshare run --input seasons.csv --output predictions.csv --summary summary.yaml
  mvpshare predict --input seasons.csv --year 2011
  mvpshare serve --input seasons.csv --addr :9080`,
	SilenceUsage: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json (overrides log_format)")
}

// setup loads the configuration and initialises the global logger and metrics
// from it.
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, error) {
	if err := logger.InitWithWriter(cmd.ErrOrStderr(), logger.FormatText); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	path := configFile
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.LoadFile(cmd.Context(), path)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		return nil, nil, err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Init(metricsOptions(cfg)...)
	return cfg, log, nil
}

func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBuckets),
		metrics.WithRowBuckets(cfg.MetricsRowBuckets),
	}
}
