// Package filter selects season rows with a CEL expression over a `row` map.
// Numeric columns are exposed as doubles (missing cells as 0), Player as a
// string and Year as an int, e.g. `row.Year >= 1995 && row["FG%"] > 0.45`.
package filter

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/okian/mvpshare/internal/domain/season"
)

// Filter is a compiled row predicate. The zero value and Filters compiled from
// an empty expression keep every row.
type Filter struct {
	expr string
	prg  cel.Program
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

// Compile parses and type-checks expr.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return &Filter{}, nil
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("%w: %q yields %s", ErrNotBoolean, expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// Expr returns the source expression.
func (f *Filter) Expr() string { return f.expr }

// Empty reports whether the filter keeps every row.
func (f *Filter) Empty() bool { return f == nil || f.prg == nil }

// Match evaluates the filter against one row.
func (f *Filter) Match(row map[string]any) (bool, error) {
	if f.Empty() {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]any{"row": row})
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEval, err)
	}
	keep, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrNotBoolean, out.Value())
	}
	return keep, nil
}

// Apply returns the rows of t the filter keeps, in their original order.
func (f *Filter) Apply(t *season.Table) (*season.Table, error) {
	if f.Empty() {
		return t, nil
	}

	rows, err := Rows(t)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, len(rows))
	for i, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if ok {
			keep = append(keep, i)
		}
	}
	return t.Subset(keep), nil
}

// Rows renders every table row as the map the expression sees.
func Rows(t *season.Table) ([]map[string]any, error) {
	players := t.Players()
	years := t.RowYears()

	rows := make([]map[string]any, t.Len())
	for i := range rows {
		rows[i] = map[string]any{
			season.PlayerColumn: players[i],
			season.YearColumn:   int64(years[i]),
		}
	}

	for _, col := range t.Columns() {
		if col == season.PlayerColumn || col == season.YearColumn {
			continue
		}
		if t.IsText(col) {
			cells, err := t.Strings(col)
			if err != nil {
				return nil, err
			}
			for i, c := range cells {
				rows[i][col] = c
			}
			continue
		}
		values, err := t.Float(col)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if math.IsNaN(v) {
				v = 0
			}
			rows[i][col] = v
		}
	}
	return rows, nil
}
