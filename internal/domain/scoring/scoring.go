// Package scoring grades a season's predicted ranking against the true one.
package scoring

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/okian/mvpshare/internal/domain/model"
)

// Default scoring configuration constants.
const (
	DefaultCutoff   = 5
	DefaultMSELimit = 50
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithCutoff sets K, the size of the true top set.
func WithCutoff(cutoff int) Option {
	return func(s *Scorer) {
		s.cutoff = cutoff
	}
}

// WithMSELimit sets how many top rows by actual share feed the MSE diagnostic.
func WithMSELimit(limit int) Option {
	return func(s *Scorer) {
		if limit > 0 {
			s.mseLimit = limit
		}
	}
}

// Result is the grade of one season.
type Result struct {
	Precision float64
	TopMSE    float64
}

// Scorer bundles the precision score and the MSE diagnostic.
type Scorer struct {
	cutoff   int
	mseLimit int
}

// New creates a Scorer with the reference cutoff of 5.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		cutoff:   DefaultCutoff,
		mseLimit: DefaultMSELimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cutoff returns the configured K.
func (s *Scorer) Cutoff() int { return s.cutoff }

// Score grades rows. It fails with ErrInvalidCutoff exactly when AveragePrecision does.
func (s *Scorer) Score(rows []model.RankedRow) (Result, error) {
	p, err := AveragePrecision(rows, s.cutoff)
	if err != nil {
		return Result{}, err
	}
	return Result{Precision: p, TopMSE: TopMeanSquaredError(rows, s.mseLimit)}, nil
}

// AveragePrecision compares the true top-cutoff players with the full predicted
// ranking. Walking rows by PredictedRank with seen starting at 1, every true
// top player contributes found/seen; the score is the mean of those samples.
// Rows outside the predicted top-cutoff still count, so a late hit is
// rewarded less than an early one instead of being ignored.
func AveragePrecision(rows []model.RankedRow, cutoff int) (float64, error) {
	if cutoff < 1 || len(rows) == 0 {
		return 0, fmt.Errorf("%w: cutoff %d over %d rows", ErrInvalidCutoff, cutoff, len(rows))
	}

	top := make(map[string]struct{}, cutoff)
	for _, r := range rows {
		if r.ActualRank <= cutoff {
			top[r.Player] = struct{}{}
		}
	}

	predicted := slices.Clone(rows)
	slices.SortFunc(predicted, func(a, b model.RankedRow) int { return cmp.Compare(a.PredictedRank, b.PredictedRank) })

	var sum float64
	found, samples := 0, 0
	for seen, r := range predicted {
		if _, ok := top[r.Player]; !ok {
			continue
		}
		found++
		samples++
		sum += float64(found) / float64(seen+1)
	}
	if samples == 0 {
		return 0, fmt.Errorf("%w: no precision samples", ErrInvalidCutoff)
	}
	return sum / float64(samples), nil
}

// TopMeanSquaredError is the MSE of Predicted against Share over the limit rows
// with the highest actual share. limit < 1 uses every row; no rows yields 0.
func TopMeanSquaredError(rows []model.RankedRow, limit int) float64 {
	if len(rows) == 0 {
		return 0
	}
	byActual := slices.Clone(rows)
	slices.SortFunc(byActual, func(a, b model.RankedRow) int { return cmp.Compare(a.ActualRank, b.ActualRank) })
	if limit > 0 && limit < len(byActual) {
		byActual = byActual[:limit]
	}

	var sum float64
	for _, r := range byActual {
		d := r.Predicted - r.Share
		sum += d * d
	}
	return sum / float64(len(byActual))
}
