// Package model contains domain models passed between layers.
package model

import "time"

// PredictionRow pairs a player's true share with the model score for one season.
type PredictionRow struct {
	Player    string
	Year      int
	Share     float64 // actual vote share
	Predicted float64 // model score
}

// RankedRow is a PredictionRow with both rankings attached. Rank 1 is the
// largest value; RankDifference is ActualRank - PredictedRank.
type RankedRow struct {
	PredictionRow
	ActualRank     int
	PredictedRank  int
	RankDifference int
}

// SeasonSummary describes one evaluated season.
type SeasonSummary struct {
	Year      int
	TrainRows int
	TestRows  int
	Precision float64
	TopMSE    float64 // MSE over the top rows by actual share
}

// SeasonResult is everything one season's evaluation produced.
type SeasonResult struct {
	Summary SeasonSummary
	Rows    []RankedRow // ordered by ActualRank
}

// SeasonSkip records a season the scorer could not evaluate.
type SeasonSkip struct {
	Year   int
	Reason string
}

// BacktestResult aggregates every evaluated season in ascending year order.
type BacktestResult struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	MeanPrecision      float64
	PerSeasonPrecision []float64
	Years              []int // Years[i] is the season of PerSeasonPrecision[i]
	Seasons            []SeasonSummary
	AllPredictions     []RankedRow
	Skipped            []SeasonSkip
	Correlations       []Correlation
}

// Correlation is the Pearson correlation of one predictor with the target over
// every row where both are present.
type Correlation struct {
	Column string
	R      float64
}

// Rows returns the slice of AllPredictions belonging to year, or nil.
func (r *BacktestResult) Rows(year int) []RankedRow {
	start, end := -1, -1
	for i, row := range r.AllPredictions {
		if row.Year != year {
			if start >= 0 {
				break
			}
			continue
		}
		if start < 0 {
			start = i
		}
		end = i + 1
	}
	if start < 0 {
		return nil
	}
	return r.AllPredictions[start:end]
}

// Summary returns the summary of year, if it was evaluated.
func (r *BacktestResult) Summary(year int) (SeasonSummary, bool) {
	for _, s := range r.Seasons {
		if s.Year == year {
			return s, true
		}
	}
	return SeasonSummary{}, false
}

// Forecast is one target season ranked by a model trained on every earlier
// season. When the season carries no actual shares it is not Scored: the
// actual rank fields of its rows are zero and Precision and TopMSE are unset.
type Forecast struct {
	RunID     string
	Year      int
	TrainRows int
	Scored    bool
	Precision float64
	TopMSE    float64
	Rows      []RankedRow // ordered by PredictedRank
}
