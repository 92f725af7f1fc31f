// Package features projects a season table onto the fixed predictor matrix and
// the share target the model is trained on.
package features

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/okian/mvpshare/internal/domain/season"
)

// Defaults for Spec.
const (
	DefaultTarget      = "Share"
	DefaultFoulsColumn = "PF"
)

var defaultPredictors = []string{
	"Age", "G", "GS", "MP", "FG", "FGA", "FG%", "3P", "3PA", "3P%", "2P", "2PA", "2P%", "eFG%",
	"FT", "FTA", "FT%", "ORB", "DRB", "TRB", "AST", "STL", "BLK", "TOV", "PF", "PTS",
	"Year", "W", "L", "W/L%", "GB", "PS/G", "PA/G", "SRS",
}

// DefaultPredictors returns a fresh copy of the reference predictor list:
// per-game counting stats, shooting percentages and team context.
func DefaultPredictors() []string { return slices.Clone(defaultPredictors) }

// Spec fixes which columns are read and how.
type Spec struct {
	Predictors  []string
	Target      string
	FoulsColumn string
}

// DefaultSpec is the reference projection.
func DefaultSpec() Spec {
	return Spec{
		Predictors:  DefaultPredictors(),
		Target:      DefaultTarget,
		FoulsColumn: DefaultFoulsColumn,
	}
}

// Check reports every predictor or target column the table lacks.
func (s Spec) Check(t *season.Table) error {
	var missing []string
	for _, col := range s.Predictors {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	if !t.Has(s.Target) {
		missing = append(missing, s.Target)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// Project returns an n x len(Predictors) feature matrix and the target column.
// Missing cells become 0, rows are never dropped. An empty table yields a nil
// matrix and an empty target.
func Project(t *season.Table, spec Spec) (*mat.Dense, []float64, error) {
	if len(spec.Predictors) == 0 {
		return nil, nil, fmt.Errorf("%w: no predictors", ErrConfiguration)
	}
	if err := spec.Check(t); err != nil {
		return nil, nil, err
	}

	target, err := t.Float(spec.Target)
	if err != nil {
		return nil, nil, errors.Join(ErrConfiguration, err)
	}
	fillMissing(target)

	n := t.Len()
	if n == 0 {
		return nil, target, nil
	}

	x := mat.NewDense(n, len(spec.Predictors), nil)
	for j, col := range spec.Predictors {
		values, err := column(t, col, col == spec.FoulsColumn)
		if err != nil {
			return nil, nil, errors.Join(ErrConfiguration, err)
		}
		fillMissing(values)
		x.SetCol(j, values)
	}
	return x, target, nil
}

// column reads col as reals. The fouls column may arrive as text, so its cells
// are trimmed and parsed one by one.
func column(t *season.Table, col string, coerce bool) ([]float64, error) {
	if !coerce || !t.IsText(col) {
		return t.Float(col)
	}
	cells, err := t.Strings(col)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(cells))
	for i, c := range cells {
		v, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err != nil {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

func fillMissing(values []float64) {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = 0
		}
	}
}
