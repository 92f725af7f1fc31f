// Package backtest runs the walk-forward evaluation: one fresh model per
// season, trained on every earlier season and scored on its own.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/okian/mvpshare/internal/adapters/mq/queue"
	"github.com/okian/mvpshare/internal/adapters/mq/worker"
	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/ranking"
	"github.com/okian/mvpshare/internal/domain/regression"
	"github.com/okian/mvpshare/internal/domain/schedule"
	"github.com/okian/mvpshare/internal/domain/scoring"
	"github.com/okian/mvpshare/internal/domain/season"
	"github.com/okian/mvpshare/pkg/logger"
	"github.com/okian/mvpshare/pkg/metrics"
)

// DefaultWarmup is the number of leading seasons never evaluated.
const DefaultWarmup = 5

const skipInvalidCutoff = "invalid_cutoff"

// Engine evaluates a season table season by season.
type Engine struct {
	logger      logger.Logger
	warmup      int
	cutoff      int
	workers     int
	skipInvalid bool
	mseLimit    int
	spec        features.Spec
}

// New creates an Engine with the reference settings: warmup 5, cutoff 5,
// the default predictors and invalid seasons skipped.
func New(opts ...Option) *Engine {
	e := &Engine{
		warmup:      DefaultWarmup,
		cutoff:      scoring.DefaultCutoff,
		workers:     runtime.NumCPU(),
		skipInvalid: true,
		mseLimit:    scoring.DefaultMSELimit,
		spec:        features.DefaultSpec(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("backtest")
	}
	return e
}

// Backtest is the one-call form of Engine.Run with the reference cutoff.
func Backtest(ctx context.Context, t *season.Table, predictors []string, factory regression.Factory, warmup int) (*model.BacktestResult, error) {
	spec := features.DefaultSpec()
	spec.Predictors = predictors
	spec.Target = t.Target()
	return New(WithFeatureSpec(spec), WithWarmup(warmup)).Run(ctx, t, factory)
}

// outcome is one season's slot in the result; exactly one of result or skip
// is set once its job ran.
type outcome struct {
	result *model.SeasonResult
	skip   *model.SeasonSkip
}

// Run trains a model from factory for every evaluable season of t and
// aggregates the scores in ascending year order. It fails with
// ErrInsufficientHistory when there is no season to evaluate and with
// features.ErrConfiguration when a configured column is missing. No partial
// result is returned on error.
func (e *Engine) Run(ctx context.Context, t *season.Table, factory regression.Factory) (*model.BacktestResult, error) {
	started := time.Now()
	res, err := e.run(ctx, t, factory, started)
	elapsed := float64(time.Since(started).Milliseconds())
	switch {
	case err == nil:
		metrics.RecordBacktestRun("success", elapsed)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		metrics.RecordBacktestRun("cancelled", elapsed)
	default:
		metrics.RecordBacktestRun("failure", elapsed)
		metrics.RecordErrorByComponent("backtest", "run_failed")
	}
	return res, err
}

func (e *Engine) run(ctx context.Context, t *season.Table, factory regression.Factory, started time.Time) (*model.BacktestResult, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	n := schedule.Count(t, e.warmup)
	if n == 0 {
		return nil, fmt.Errorf("%w: %d distinct seasons with warmup %d", ErrInsufficientHistory, len(t.Years()), e.warmup)
	}
	if len(e.spec.Predictors) == 0 {
		return nil, fmt.Errorf("%w: no predictors", features.ErrConfiguration)
	}
	if err := e.spec.Check(t); err != nil {
		return nil, err
	}

	slots := make([]outcome, n)
	jobs := queue.NewInMemoryQueue[schedule.Partition](queue.WithCapacity(n), queue.WithName("seasons"))
	for p := range schedule.Schedule(t, e.warmup) {
		if err := jobs.Enqueue(ctx, p); err != nil {
			return nil, fmt.Errorf("schedule season %d: %w", p.Year, err)
		}
	}
	if err := jobs.Close(); err != nil {
		return nil, err
	}

	scorer := scoring.New(scoring.WithCutoff(e.cutoff), scoring.WithMSELimit(e.mseLimit))
	pool := worker.NewPool(min(e.workers, n), func(ctx context.Context, p schedule.Partition) error {
		o, err := e.evaluate(ctx, p, factory, scorer)
		if err != nil {
			return err
		}
		slots[p.Index] = o
		return nil
	}, worker.WithName("season-workers"), worker.WithLogger(e.logger))

	if err := pool.Run(ctx, jobs); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("backtest cancelled: %w", ctxErr)
		}
		return nil, err
	}

	res, err := e.assemble(ctx, slots, started)
	if err != nil {
		return nil, err
	}
	if res.Correlations, err = features.Correlations(t, e.spec); err != nil {
		return nil, err
	}
	return res, nil
}

// evaluate is the per-season step: project, fit a fresh model, predict, rank
// and score.
func (e *Engine) evaluate(ctx context.Context, p schedule.Partition, factory regression.Factory, scorer *scoring.Scorer) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, err
	}

	rows, err := e.fitPredict(p.Year, p.Train, p.Test, factory)
	if err != nil {
		return outcome{}, err
	}
	ranked := ranking.Rank(rows)

	graded, err := scorer.Score(ranked)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidCutoff) && e.skipInvalid {
			return outcome{skip: &model.SeasonSkip{Year: p.Year, Reason: err.Error()}}, nil
		}
		return outcome{}, fmt.Errorf("season %d score: %w", p.Year, err)
	}

	e.logger.Debug(ctx, "season evaluated",
		logger.Int("year", p.Year),
		logger.Int("train_rows", p.Train.Len()),
		logger.Int("test_rows", p.Test.Len()),
		logger.Float64("precision", graded.Precision),
		logger.Float64("top_mse", graded.TopMSE),
	)

	return outcome{result: &model.SeasonResult{
		Summary: model.SeasonSummary{
			Year:      p.Year,
			TrainRows: p.Train.Len(),
			TestRows:  p.Test.Len(),
			Precision: graded.Precision,
			TopMSE:    graded.TopMSE,
		},
		Rows: ranked,
	}}, nil
}

// fitPredict projects train and test, fits a fresh model from factory on train
// and predicts every test row. Share holds the projected target, so a missing
// share reads as zero.
func (e *Engine) fitPredict(year int, train, test *season.Table, factory regression.Factory) ([]model.PredictionRow, error) {
	trainX, trainY, err := features.Project(train, e.spec)
	if err != nil {
		return nil, fmt.Errorf("season %d train: %w", year, err)
	}
	testX, testY, err := features.Project(test, e.spec)
	if err != nil {
		return nil, fmt.Errorf("season %d test: %w", year, err)
	}

	m := factory()
	if m == nil {
		return nil, fmt.Errorf("season %d: %w", year, ErrNilFactory)
	}

	start := time.Now()
	if err := m.Fit(trainX, trainY); err != nil {
		return nil, fmt.Errorf("season %d fit: %w", year, err)
	}
	metrics.RecordFitLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordTrainRows(train.Len())

	start = time.Now()
	preds, err := m.Predict(testX)
	if err != nil {
		return nil, fmt.Errorf("season %d predict: %w", year, err)
	}
	metrics.RecordPredictLatency(float64(time.Since(start).Microseconds()) / 1000)
	if len(preds) != len(testY) {
		return nil, fmt.Errorf("season %d: %w: %d predictions for %d rows",
			year, regression.ErrDimensionMismatch, len(preds), len(testY))
	}

	players := test.Players()
	rows := make([]model.PredictionRow, len(preds))
	for i := range preds {
		rows[i] = model.PredictionRow{
			Player:    players[i],
			Year:      year,
			Share:     testY[i],
			Predicted: preds[i],
		}
	}
	return rows, nil
}

// assemble walks the slots in partition order, which is ascending year order.
func (e *Engine) assemble(ctx context.Context, slots []outcome, started time.Time) (*model.BacktestResult, error) {
	res := &model.BacktestResult{
		RunID:     uuid.NewString(),
		StartedAt: started,
	}

	for _, o := range slots {
		switch {
		case o.skip != nil:
			res.Skipped = append(res.Skipped, *o.skip)
			metrics.RecordSeasonSkipped(skipInvalidCutoff)
			e.logger.Warn(ctx, "season skipped",
				logger.Int("year", o.skip.Year),
				logger.String("reason", o.skip.Reason),
			)
		case o.result != nil:
			s := o.result.Summary
			res.Years = append(res.Years, s.Year)
			res.PerSeasonPrecision = append(res.PerSeasonPrecision, s.Precision)
			res.Seasons = append(res.Seasons, s)
			res.AllPredictions = append(res.AllPredictions, o.result.Rows...)
			metrics.RecordSeasonEvaluated(s.Year, s.Precision)
		}
	}

	if len(res.PerSeasonPrecision) == 0 {
		return nil, fmt.Errorf("%w: %d of %d seasons skipped", ErrNoScoredSeasons, len(res.Skipped), len(slots))
	}

	res.MeanPrecision = stat.Mean(res.PerSeasonPrecision, nil)
	res.Duration = time.Since(started)
	metrics.UpdateMeanPrecision(res.MeanPrecision)

	e.logger.Info(ctx, "backtest complete",
		logger.String("run_id", res.RunID),
		logger.Int("seasons", len(res.Seasons)),
		logger.Int("skipped", len(res.Skipped)),
		logger.Int("rows", len(res.AllPredictions)),
		logger.Float64("mean_precision", res.MeanPrecision),
		logger.Duration("duration", res.Duration),
	)
	return res, nil
}
