// Package schedule produces walk-forward train/test partitions over seasons.
package schedule

import (
	"iter"

	"github.com/okian/mvpshare/internal/domain/season"
)

// Partition trains on every season before Year and tests on Year alone.
type Partition struct {
	Index int // position in the schedule, 0-based
	Year  int
	Train *season.Table
	Test  *season.Table
}

// EvaluableYears returns the years that get a partition: every distinct year
// after the first warmup ones. The first year is never evaluable because it has
// no history, so warmup values below 1 behave like 1.
func EvaluableYears(years []int, warmup int) []int {
	start := max(warmup, 1)
	if start >= len(years) {
		return nil
	}
	out := make([]int, len(years)-start)
	copy(out, years[start:])
	return out
}

// Schedule lazily yields one Partition per evaluable year, ascending. It keeps
// no state between calls, so ranging over it twice yields the same partitions.
func Schedule(t *season.Table, warmup int) iter.Seq[Partition] {
	return func(yield func(Partition) bool) {
		for i, year := range EvaluableYears(t.Years(), warmup) {
			p := Partition{
				Index: i,
				Year:  year,
				Train: t.Before(year),
				Test:  t.In(year),
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Count is the number of partitions Schedule would yield.
func Count(t *season.Table, warmup int) int {
	return len(EvaluableYears(t.Years(), warmup))
}
