// Package season holds the cleaned per-player, per-season record set the
// backtest reads. A Table is immutable once built and safe for concurrent reads.
package season

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/mvpshare/internal/domain/dedupe"
)

// Identity columns every table carries.
const (
	PlayerColumn = "Player"
	YearColumn   = "Year"
	ShareColumn  = "Share"
)

// Table is a season record set backed by a gota DataFrame.
type Table struct {
	df      dataframe.DataFrame
	target  string
	players []string
	years   []int
}

// NewTable validates df and wraps it. The Player, Year and target columns must
// exist, Year must be integral, and (Player, Year) must be unique.
func NewTable(df dataframe.DataFrame, target string) (*Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("season table: %w", df.Err)
	}

	names := df.Names()
	for _, col := range []string{PlayerColumn, YearColumn, target} {
		if !slices.Contains(names, col) {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	players := df.Col(PlayerColumn).Records()
	rawYears := df.Col(YearColumn).Float()
	years := make([]int, len(rawYears))
	for i, y := range rawYears {
		if math.IsNaN(y) || y != math.Trunc(y) {
			return nil, fmt.Errorf("%w: row %d has year %q", ErrInvalidValue, i, df.Col(YearColumn).Elem(i).String())
		}
		years[i] = int(y)
	}

	seen := dedupe.NewInMemoryDeduper()
	ctx := context.Background()
	for i := range players {
		if seen.SeenAndRecord(ctx, dedupe.Key(players[i], years[i])) {
			return nil, fmt.Errorf("%w: %s in %d", ErrDuplicateRecord, players[i], years[i])
		}
	}

	return &Table{df: df, target: target, players: players, years: years}, nil
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.years) }

// Target names the column holding the true share.
func (t *Table) Target() string { return t.target }

// Frame exposes the underlying DataFrame. Callers must not mutate it.
func (t *Table) Frame() dataframe.DataFrame { return t.df }

// Players returns the Player column in row order.
func (t *Table) Players() []string { return slices.Clone(t.players) }

// RowYears returns the Year column in row order.
func (t *Table) RowYears() []int { return slices.Clone(t.years) }

// Years returns the distinct years in ascending order.
func (t *Table) Years() []int {
	out := slices.Clone(t.years)
	slices.Sort(out)
	return slices.Compact(out)
}

// Columns lists the column names in table order.
func (t *Table) Columns() []string { return t.df.Names() }

// Has reports whether column exists.
func (t *Table) Has(column string) bool { return slices.Contains(t.df.Names(), column) }

// Float returns a column as reals. Missing or unparseable cells are NaN.
func (t *Table) Float(column string) ([]float64, error) {
	if !t.Has(column) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	return t.df.Col(column).Float(), nil
}

// Strings returns a column as its textual cells; NA cells read as "NaN".
func (t *Table) Strings(column string) ([]string, error) {
	if !t.Has(column) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	return t.df.Col(column).Records(), nil
}

// IsText reports whether column is stored as strings.
func (t *Table) IsText(column string) bool {
	return t.Has(column) && t.df.Col(column).Type() == series.String
}

// Before returns the rows with Year < year, original order kept.
func (t *Table) Before(year int) *Table {
	return t.where(func(y int) bool { return y < year })
}

// In returns the rows with Year == year, original order kept.
func (t *Table) In(year int) *Table {
	return t.where(func(y int) bool { return y == year })
}

func (t *Table) where(keep func(int) bool) *Table {
	idx := make([]int, 0, len(t.years))
	for i, y := range t.years {
		if keep(y) {
			idx = append(idx, i)
		}
	}
	return t.Subset(idx)
}

// Subset returns the rows at idx in the given order.
func (t *Table) Subset(idx []int) *Table {
	players := make([]string, len(idx))
	years := make([]int, len(idx))
	for k, i := range idx {
		players[k] = t.players[i]
		years[k] = t.years[i]
	}
	return &Table{
		df:      t.df.Subset(idx),
		target:  t.target,
		players: players,
		years:   years,
	}
}

// Records converts the table to SeasonRecords. Every column other than Player,
// Year and the target lands in Stats; text cells that do not parse read as NaN.
func (t *Table) Records() []SeasonRecord {
	out := make([]SeasonRecord, t.Len())
	share := t.df.Col(t.target).Float()

	stats := make(map[string][]float64)
	for _, name := range t.df.Names() {
		if name == PlayerColumn || name == YearColumn || name == t.target {
			continue
		}
		stats[name] = t.df.Col(name).Float()
	}

	for i := range out {
		rec := SeasonRecord{
			Player: t.players[i],
			Year:   t.years[i],
			Share:  share[i],
			Stats:  make(map[string]float64, len(stats)),
		}
		for name, values := range stats {
			rec.Stats[name] = values[i]
		}
		out[i] = rec
	}
	return out
}

// FromRecords builds a table in memory. columns fixes the order of stat columns;
// a stat missing from a record's map becomes NaN. Identity names in columns are
// skipped since those columns always exist. The target column is Share.
func FromRecords(records []SeasonRecord, columns []string) (*Table, error) {
	players := make([]string, len(records))
	years := make([]int, len(records))
	shares := make([]float64, len(records))
	for i, r := range records {
		players[i] = r.Player
		years[i] = r.Year
		shares[i] = r.Share
	}

	cols := make([]series.Series, 0, len(columns)+3)
	cols = append(cols,
		series.New(players, series.String, PlayerColumn),
		series.New(years, series.Int, YearColumn),
	)
	for _, name := range columns {
		if name == PlayerColumn || name == YearColumn || name == ShareColumn {
			continue
		}
		values := make([]float64, len(records))
		for i, r := range records {
			v, ok := r.Stats[name]
			if !ok {
				v = math.NaN()
			}
			values[i] = v
		}
		cols = append(cols, series.New(values, series.Float, name))
	}
	cols = append(cols, series.New(shares, series.Float, ShareColumn))

	return NewTable(dataframe.New(cols...), ShareColumn)
}
