// Package config defines backtest configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a dotenv file, an optional YAML file and MVPSHARE_* env vars over New().
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/pkg/logger"
)

// Defaults shared by New and the CLI help text.
const (
	DefaultAddr          = ":9080"
	DefaultWarmup        = 5
	DefaultCutoff        = 5
	DefaultRidgeAlpha    = 0.1
	DefaultMSELimit      = 50
	DefaultPostgresTable = "season_predictions"

	DefaultMetricsNamespace = "mvpshare"
	DefaultMetricsSubsystem = "backtest"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address of the serve command, e.g. ":9080".
	Addr string `koanf:"addr"`

	// InputPath is the cleaned season CSV the backtest reads.
	InputPath string `koanf:"input_path"`

	// OutputPath receives the concatenated prediction table as CSV. Empty disables it.
	OutputPath string `koanf:"output_path"`

	// SummaryPath receives the YAML or JSON run summary. Empty disables it.
	SummaryPath string `koanf:"summary_path"`

	// MetricsPath receives a Prometheus textfile after batch runs. Empty disables it.
	MetricsPath string `koanf:"metrics_path"`

	// Warmup is the number of leading seasons used only as history.
	Warmup int `koanf:"warmup"`

	// Cutoff is K in the precision-at-K score.
	Cutoff int `koanf:"cutoff"`

	// RidgeAlpha is the L2 penalty of the reference model.
	RidgeAlpha float64 `koanf:"ridge_alpha"`

	// WorkerCount bounds how many seasons are evaluated at once.
	WorkerCount int `koanf:"worker_count"`

	// Predictors is the ordered list of feature columns.
	Predictors []string `koanf:"predictors"`

	// Target is the column holding the vote share.
	Target string `koanf:"target"`

	// FoulsColumn is coerced to a real number before projection.
	FoulsColumn string `koanf:"fouls_column"`

	// RowFilter is an optional CEL expression over `row` applied after load.
	RowFilter string `koanf:"row_filter"`

	// SkipInvalidSeasons records and skips seasons the scorer rejects instead of aborting.
	SkipInvalidSeasons bool `koanf:"skip_invalid_seasons"`

	// PostgresDSN enables the Postgres prediction sink when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// PostgresTable names the table the sink writes to.
	PostgresTable string `koanf:"postgres_table"`

	// MSELimit is how many top rows by actual share feed the per-season MSE.
	MSELimit int `koanf:"mse_limit"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// MetricsSubsystem is the second name segment of the backtest metrics.
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels added to every metric, e.g. env=prod.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBuckets are the fit, predict and run duration buckets in milliseconds.
	MetricsLatencyBuckets []float64 `koanf:"metrics_latency_buckets"`

	// MetricsRowBuckets are the training rows histogram buckets.
	MetricsRowBuckets []float64 `koanf:"metrics_row_buckets"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          logger.FormatText,
		Addr:               DefaultAddr,
		Warmup:             DefaultWarmup,
		Cutoff:             DefaultCutoff,
		RidgeAlpha:         DefaultRidgeAlpha,
		WorkerCount:        runtime.NumCPU(),
		Predictors:         features.DefaultPredictors(),
		Target:             features.DefaultTarget,
		FoulsColumn:        features.DefaultFoulsColumn,
		SkipInvalidSeasons: true,
		PostgresTable:      DefaultPostgresTable,
		MSELimit:           DefaultMSELimit,
		MetricsNamespace:   DefaultMetricsNamespace,
		MetricsSubsystem:   DefaultMetricsSubsystem,
	}
}

// FeatureSpec returns the projection settings carried by the config.
func (c *Config) FeatureSpec() features.Spec {
	return features.Spec{
		Predictors:  slices.Clone(c.Predictors),
		Target:      c.Target,
		FoulsColumn: c.FoulsColumn,
	}
}

// Validate checks the invariants the backtest relies on.
func (c *Config) Validate() error {
	switch {
	case c.Warmup < 0:
		return fmt.Errorf("%w: warmup must be >= 0, got %d", ErrInvalidConfig, c.Warmup)
	case c.Cutoff < 1:
		return fmt.Errorf("%w: cutoff must be >= 1, got %d", ErrInvalidConfig, c.Cutoff)
	case c.RidgeAlpha < 0:
		return fmt.Errorf("%w: ridge_alpha must be >= 0, got %g", ErrInvalidConfig, c.RidgeAlpha)
	case len(c.Predictors) == 0:
		return fmt.Errorf("%w: predictors must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.Target) == "":
		return fmt.Errorf("%w: target must not be empty", ErrInvalidConfig)
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MSELimit < 1:
		return fmt.Errorf("%w: mse_limit must be >= 1, got %d", ErrInvalidConfig, c.MSELimit)
	}

	switch strings.ToLower(c.LogFormat) {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if !increasing(c.MetricsLatencyBuckets) {
		return fmt.Errorf("%w: metrics_latency_buckets must be strictly increasing", ErrInvalidConfig)
	}
	if !increasing(c.MetricsRowBuckets) {
		return fmt.Errorf("%w: metrics_row_buckets must be strictly increasing", ErrInvalidConfig)
	}
	for name := range c.MetricsLabels {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: metrics_labels has an empty name", ErrInvalidConfig)
		}
	}

	for _, p := range c.Predictors {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: predictors contains an empty name", ErrInvalidConfig)
		}
	}
	return nil
}

func increasing(buckets []float64) bool {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return false
		}
	}
	return true
}
