package backtest

import (
	"slices"

	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWarmup sets how many leading seasons are only ever used for training.
func WithWarmup(warmup int) Option {
	return func(e *Engine) {
		e.warmup = warmup
	}
}

// WithCutoff sets the size of the true top set the scorer checks.
func WithCutoff(cutoff int) Option {
	return func(e *Engine) {
		e.cutoff = cutoff
	}
}

// WithWorkerCount sets how many seasons are evaluated at once.
func WithWorkerCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSkipInvalidSeasons controls whether a season the scorer rejects is
// recorded and skipped (true) or aborts the run (false).
func WithSkipInvalidSeasons(skip bool) Option {
	return func(e *Engine) {
		e.skipInvalid = skip
	}
}

// WithMSELimit sets how many top rows feed the per-season MSE.
func WithMSELimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.mseLimit = limit
		}
	}
}

// WithFeatureSpec sets the predictor and target columns.
func WithFeatureSpec(spec features.Spec) Option {
	return func(e *Engine) {
		spec.Predictors = slices.Clone(spec.Predictors)
		e.spec = spec
	}
}
