package features_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/internal/domain/season"
)

func TestCorrelations(t *testing.T) {
	shares := []float64{0.9, 0.5, 0.2, 0, math.NaN()}
	var recs []season.SeasonRecord
	for i, share := range shares {
		recs = append(recs, season.SeasonRecord{
			Player: string(rune('A' + i)),
			Year:   2001,
			Stats: map[string]float64{
				"PTS": 10 + 20*share,
				"TOV": 5 - share,
				"G":   82,
			},
			Share: share,
		})
	}
	recs[1].Stats["PTS"] = math.NaN()
	table, err := season.FromRecords(recs, []string{"PTS", "TOV", "G"})
	require.NoError(t, err)

	spec := features.Spec{Predictors: []string{"PTS", "TOV", "G"}, Target: "Share"}
	got, err := features.Correlations(table, spec)
	require.NoError(t, err)

	require.Len(t, got, 2, "a constant column has no correlation")
	assert.Equal(t, "PTS", got[0].Column)
	assert.InDelta(t, 1.0, got[0].R, 1e-9, "rows missing a value are dropped pairwise")
	assert.Equal(t, "TOV", got[1].Column)
	assert.InDelta(t, -1.0, got[1].R, 1e-9)

	_, err = features.Correlations(table, features.Spec{Predictors: []string{"WS"}, Target: "Share"})
	assert.ErrorIs(t, err, features.ErrConfiguration)
}
