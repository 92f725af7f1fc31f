package features_test

import (
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/mvpshare/internal/domain/features"
	"github.com/okian/mvpshare/internal/domain/season"
)

func TestDefaultPredictors(t *testing.T) {
	p := features.DefaultPredictors()
	require.Len(t, p, 34)
	assert.Equal(t, "Age", p[0])
	assert.Equal(t, "SRS", p[33])
	assert.Contains(t, p, "PF")

	p[0] = "mutated"
	assert.Equal(t, "Age", features.DefaultPredictors()[0], "callers get a copy")
}

func TestProject(t *testing.T) {
	csv := "Player,Year,PTS,PF,AST,Share\n" +
		"A,1991,30.1, 3.0 ,NA,0.8\n" +
		"B,1991,,2,5.5,\n" +
		"C,1991,12,n/a,1,0.1\n"
	df := dataframe.ReadCSV(strings.NewReader(csv), dataframe.WithTypes(map[string]series.Type{"PF": series.String}))
	table, err := season.NewTable(df, "Share")
	require.NoError(t, err)

	spec := features.Spec{Predictors: []string{"PTS", "PF", "AST"}, Target: "Share", FoulsColumn: "PF"}
	x, y, err := features.Project(table, spec)
	require.NoError(t, err)

	rows, cols := x.Dims()
	require.Equal(t, 3, rows, "rows are never dropped")
	require.Equal(t, 3, cols)

	assert.InDelta(t, 30.1, x.At(0, 0), 1e-9)
	assert.Equal(t, 0.0, x.At(1, 0), "missing numeric cell becomes 0")
	assert.Equal(t, 3.0, x.At(0, 1), "fouls text is trimmed and parsed")
	assert.Equal(t, 2.0, x.At(1, 1))
	assert.Equal(t, 0.0, x.At(2, 1), "unparseable fouls cell becomes 0")
	assert.Equal(t, 0.0, x.At(0, 2))
	assert.Equal(t, []float64{0.8, 0, 0.1}, y)
}

func TestProjectMissingColumns(t *testing.T) {
	table, err := season.FromRecords([]season.SeasonRecord{
		{Player: "A", Year: 1991, Stats: map[string]float64{"PTS": 1}, Share: 0.5},
	}, []string{"PTS"})
	require.NoError(t, err)

	tests := []struct {
		name string
		spec features.Spec
		want string
	}{
		{"predictor", features.Spec{Predictors: []string{"PTS", "AST", "BLK"}, Target: "Share"}, "AST, BLK"},
		{"target", features.Spec{Predictors: []string{"PTS"}, Target: "Votes"}, "Votes"},
		{"empty", features.Spec{Target: "Share"}, "no predictors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := features.Project(table, tt.spec)
			require.ErrorIs(t, err, features.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestProjectEmptyTable(t *testing.T) {
	table, err := season.FromRecords(nil, []string{"PTS"})
	require.NoError(t, err)

	x, y, err := features.Project(table, features.Spec{Predictors: []string{"PTS"}, Target: "Share"})
	require.NoError(t, err)
	assert.Nil(t, x)
	assert.Empty(t, y)
}

func TestDefaultSpecCheck(t *testing.T) {
	spec := features.DefaultSpec()
	table, err := season.FromRecords(nil, spec.Predictors)
	require.NoError(t, err)
	assert.NoError(t, spec.Check(table))
}
