package repository_test

import (
	"time"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/ranking"
)

// sampleResult has two scored seasons of three players and one skipped season.
func sampleResult() *model.BacktestResult {
	s2000 := ranking.Rank([]model.PredictionRow{
		{Player: "Shaquille O'Neal", Year: 2000, Share: 0.998, Predicted: 0.62},
		{Player: "Kevin Garnett", Year: 2000, Share: 0.337, Predicted: 0.71},
		{Player: "Alonzo Mourning", Year: 2000, Share: 0.328, Predicted: 0.12},
	})
	s2001 := ranking.Rank([]model.PredictionRow{
		{Player: "Allen Iverson", Year: 2001, Share: 0.904, Predicted: 0.55},
		{Player: "Tim Duncan", Year: 2001, Share: 0.706, Predicted: 0.58},
		{Player: "Shaquille O'Neal", Year: 2001, Share: 0.643, Predicted: 0.61},
	})
	return &model.BacktestResult{
		RunID:              "run-1",
		StartedAt:          time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:           1500 * time.Millisecond,
		MeanPrecision:      0.75,
		PerSeasonPrecision: []float64{1, 0.5},
		Years:              []int{2000, 2001},
		Seasons: []model.SeasonSummary{
			{Year: 2000, TrainRows: 30, TestRows: 3, Precision: 1, TopMSE: 0.1},
			{Year: 2001, TrainRows: 33, TestRows: 3, Precision: 0.5, TopMSE: 0.2},
		},
		AllPredictions: append(s2000, s2001...),
		Skipped:        []model.SeasonSkip{{Year: 2002, Reason: "invalid cutoff"}},
		Correlations:   []model.Correlation{{Column: "PTS", R: 0.42}, {Column: "W", R: 0.31}},
	}
}
