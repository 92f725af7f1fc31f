// Package types contains the JSON shapes served by the read API.
package types

// Entry is one player's line in a season ranking.
type Entry struct {
	ActualRank     int     `json:"actual_rank"`
	PredictedRank  int     `json:"predicted_rank"`
	RankDifference int     `json:"rank_difference"`
	Player         string  `json:"player"`
	Year           int     `json:"year"`
	Share          float64 `json:"share"`
	Predicted      float64 `json:"predicted"`
}

// Season summarises one evaluated season.
type Season struct {
	Year      int     `json:"year" yaml:"year"`
	TrainRows int     `json:"train_rows" yaml:"train_rows"`
	TestRows  int     `json:"test_rows" yaml:"test_rows"`
	Precision float64 `json:"precision" yaml:"precision"`
	TopMSE    float64 `json:"top_mse" yaml:"top_mse"`
}

// Skip records a season that was not scored.
type Skip struct {
	Year   int    `json:"year" yaml:"year"`
	Reason string `json:"reason" yaml:"reason"`
}

// Summary is the run-level report.
type Summary struct {
	RunID              string    `json:"run_id" yaml:"run_id"`
	StartedAt          string    `json:"started_at" yaml:"started_at"`
	DurationMs         int64     `json:"duration_ms" yaml:"duration_ms"`
	MeanPrecision      float64   `json:"mean_precision" yaml:"mean_precision"`
	Years              []int     `json:"years" yaml:"years"`
	PerSeasonPrecision []float64 `json:"per_season_precision" yaml:"per_season_precision"`
	Seasons            []Season  `json:"seasons" yaml:"seasons"`
	Skipped            []Skip    `json:"skipped" yaml:"skipped"`
	// Correlations is each predictor's Pearson r with the target over the
	// whole input table.
	Correlations []Correlation `json:"correlations" yaml:"correlations"`
}

// Correlation is one predictor's linear correlation with the target.
type Correlation struct {
	Column string  `json:"column" yaml:"column"`
	R      float64 `json:"r" yaml:"r"`
}

// SeasonDetail is a season summary with its ranking.
type SeasonDetail struct {
	Season
	Order   string  `json:"order"`
	Entries []Entry `json:"entries"`
}
