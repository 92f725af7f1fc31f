// Package ranking turns actual shares and predicted scores into two competing
// rankings of the same players.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/mvpshare/internal/domain/model"
)

// Rank assigns ActualRank by Share and PredictedRank by Predicted, both
// descending. Ties keep input order, so each rank column is a permutation of
// 1..len(rows) and equal inputs give identical output. The result is ordered by
// ActualRank. NaN values rank last.
func Rank(rows []model.PredictionRow) []model.RankedRow {
	out := make([]model.RankedRow, len(rows))
	for i, r := range rows {
		out[i].PredictionRow = r
	}

	for pos, i := range order(rows, func(r model.PredictionRow) float64 { return r.Predicted }) {
		out[i].PredictedRank = pos + 1
	}
	for pos, i := range order(rows, func(r model.PredictionRow) float64 { return r.Share }) {
		out[i].ActualRank = pos + 1
	}
	for i := range out {
		out[i].RankDifference = out[i].ActualRank - out[i].PredictedRank
	}

	slices.SortFunc(out, func(a, b model.RankedRow) int { return cmp.Compare(a.ActualRank, b.ActualRank) })
	return out
}

// order returns row indexes sorted by key descending, stable on ties.
func order(rows []model.PredictionRow, key func(model.PredictionRow) float64) []int {
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(key(rows[b]), key(rows[a]))
	})
	return idx
}

// ByPredicted returns a copy of rows ordered by PredictedRank.
func ByPredicted(rows []model.RankedRow) []model.RankedRow {
	out := slices.Clone(rows)
	slices.SortFunc(out, func(a, b model.RankedRow) int { return cmp.Compare(a.PredictedRank, b.PredictedRank) })
	return out
}
