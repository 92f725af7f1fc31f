package features

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/season"
)

// Correlations returns the Pearson correlation of every predictor with the
// target, in predictor order. Rows missing either value are left out of that
// pair. A predictor with fewer than two such rows or with no variance has no
// defined correlation and is omitted.
func Correlations(t *season.Table, spec Spec) ([]model.Correlation, error) {
	if err := spec.Check(t); err != nil {
		return nil, err
	}
	target, err := t.Float(spec.Target)
	if err != nil {
		return nil, errors.Join(ErrConfiguration, err)
	}

	out := make([]model.Correlation, 0, len(spec.Predictors))
	for _, col := range spec.Predictors {
		values, err := column(t, col, col == spec.FoulsColumn)
		if err != nil {
			return nil, errors.Join(ErrConfiguration, err)
		}
		x, y := complete(values, target)
		if len(x) < 2 {
			continue
		}
		r := stat.Correlation(x, y, nil)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, model.Correlation{Column: col, R: r})
	}
	return out, nil
}

func complete(a, b []float64) ([]float64, []float64) {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(a))
	for i := range a {
		if finite(a[i]) && finite(b[i]) {
			x = append(x, a[i])
			y = append(y, b[i])
		}
	}
	return x, y
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
