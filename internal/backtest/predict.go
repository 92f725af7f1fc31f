package backtest

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/ranking"
	"github.com/okian/mvpshare/internal/domain/regression"
	"github.com/okian/mvpshare/internal/domain/scoring"
	"github.com/okian/mvpshare/internal/domain/season"
	"github.com/okian/mvpshare/pkg/logger"
	"github.com/okian/mvpshare/pkg/metrics"
)

// Predict ranks a single target season with a fresh model trained on every
// season before it. Warmup does not apply. A season whose target cells are all
// missing is ranked by prediction only and left unscored; otherwise it is
// scored with the engine's cutoff and MSE limit.
func (e *Engine) Predict(ctx context.Context, t *season.Table, factory regression.Factory, year int) (*model.Forecast, error) {
	fc, err := e.predict(ctx, t, factory, year)
	if err != nil {
		metrics.RecordErrorByComponent("backtest", "predict_failed")
	}
	return fc, err
}

func (e *Engine) predict(ctx context.Context, t *season.Table, factory regression.Factory, year int) (*model.Forecast, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if len(e.spec.Predictors) == 0 {
		return nil, fmt.Errorf("%w: no predictors", features.ErrConfiguration)
	}
	if err := e.spec.Check(t); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	test := t.In(year)
	if test.Len() == 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeason, year)
	}
	train := t.Before(year)
	if train.Len() == 0 {
		return nil, fmt.Errorf("%w: no season before %d", ErrInsufficientHistory, year)
	}

	actual, err := test.Float(e.spec.Target)
	if err != nil {
		return nil, err
	}
	scored := hasValue(actual)

	rows, err := e.fitPredict(year, train, test, factory)
	if err != nil {
		return nil, err
	}
	ranked := ranking.Rank(rows)

	fc := &model.Forecast{
		RunID:     uuid.NewString(),
		Year:      year,
		TrainRows: train.Len(),
		Scored:    scored,
	}
	if scored {
		graded, err := scoring.New(scoring.WithCutoff(e.cutoff), scoring.WithMSELimit(e.mseLimit)).Score(ranked)
		if err != nil {
			return nil, fmt.Errorf("season %d score: %w", year, err)
		}
		fc.Precision = graded.Precision
		fc.TopMSE = graded.TopMSE
	} else {
		for i := range ranked {
			ranked[i].ActualRank = 0
			ranked[i].RankDifference = 0
		}
	}
	fc.Rows = ranking.ByPredicted(ranked)

	e.logger.Info(ctx, "season predicted",
		logger.String("run_id", fc.RunID),
		logger.Int("year", year),
		logger.Int("train_rows", fc.TrainRows),
		logger.Int("test_rows", len(fc.Rows)),
		logger.Bool("scored", scored),
		logger.Float64("precision", fc.Precision),
		logger.Float64("top_mse", fc.TopMSE),
	)
	return fc, nil
}

func hasValue(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}
