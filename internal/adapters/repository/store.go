// Package repository loads season tables and persists or serves backtest
// results.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/mvpshare/internal/domain/model"
	"github.com/okian/mvpshare/internal/domain/ranking"
	"github.com/okian/mvpshare/internal/domain/types"
)

// Order selects which ranking a season listing follows.
type Order string

const (
	OrderActual    Order = "actual"
	OrderPredicted Order = "predicted"
)

// ParseOrder accepts "actual" (also the empty string) and "predicted".
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderActual:
		return OrderActual, nil
	case OrderPredicted:
		return OrderPredicted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
	}
}

// Store provides read access to the latest backtest result.
type Store interface {
	// Summary returns the run-level report.
	Summary(ctx context.Context) (types.Summary, error)

	// Seasons returns every evaluated season in ascending year order.
	Seasons(ctx context.Context) ([]types.Season, error)

	// Season returns a season summary with its top-n entries; n == 0 means
	// every entry. Returns ErrNotFound if the season was not evaluated.
	Season(ctx context.Context, year, n int, order Order) (types.SeasonDetail, error)

	// TopN returns the top-n entries of a season by the given order.
	TopN(ctx context.Context, year, n int, order Order) ([]types.Entry, error)

	// Player returns one player's entry in a season.
	Player(ctx context.Context, year int, name string) (types.Entry, error)
}

// ResultStore is an in-memory Store over a published BacktestResult.
// Publishing replaces the whole view at once.
type ResultStore struct {
	mu      sync.RWMutex
	result  *model.BacktestResult
	summary types.Summary
	seasons map[int]model.SeasonSummary
}

var _ Store = (*ResultStore)(nil)

// NewResultStore returns an empty store; reads fail with ErrNotReady until
// Publish is called.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Publish makes res the served result.
func (s *ResultStore) Publish(res *model.BacktestResult) {
	seasons := make(map[int]model.SeasonSummary, len(res.Seasons))
	for _, ss := range res.Seasons {
		seasons[ss.Year] = ss
	}
	summary := NewSummary(res)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = res
	s.summary = summary
	s.seasons = seasons
}

// Ready reports whether a result has been published.
func (s *ResultStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result != nil
}

// Summary returns the run-level report.
func (s *ResultStore) Summary(ctx context.Context) (types.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return types.Summary{}, ErrNotReady
	}
	return s.summary, nil
}

// Seasons returns every evaluated season in ascending year order.
func (s *ResultStore) Seasons(ctx context.Context) ([]types.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return nil, ErrNotReady
	}
	return append([]types.Season{}, s.summary.Seasons...), nil
}

// Season returns a season summary with its top-n entries. The summary and
// the entries always come from the same published run.
func (s *ResultStore) Season(ctx context.Context, year, n int, order Order) (types.SeasonDetail, error) {
	if err := checkQuery(n, order); err != nil {
		return types.SeasonDetail{}, err
	}
	ss, rows, err := s.snapshot(year)
	if err != nil {
		return types.SeasonDetail{}, err
	}
	return types.SeasonDetail{Season: toSeason(ss), Order: string(order), Entries: topEntries(rows, n, order)}, nil
}

// TopN returns the top-n entries of a season; n == 0 means every entry.
func (s *ResultStore) TopN(ctx context.Context, year, n int, order Order) ([]types.Entry, error) {
	if err := checkQuery(n, order); err != nil {
		return nil, err
	}
	_, rows, err := s.snapshot(year)
	if err != nil {
		return nil, err
	}
	return topEntries(rows, n, order), nil
}

// Player returns one player's entry in a season. Names match exactly.
func (s *ResultStore) Player(ctx context.Context, year int, name string) (types.Entry, error) {
	_, rows, err := s.snapshot(year)
	if err != nil {
		return types.Entry{}, err
	}
	for _, r := range rows {
		if r.Player == name {
			return toEntry(r), nil
		}
	}
	return types.Entry{}, fmt.Errorf("player %q in %d: %w", name, year, ErrNotFound)
}

func checkQuery(n int, order Order) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	if order != OrderActual && order != OrderPredicted {
		return fmt.Errorf("%w: %q", ErrInvalidOrder, order)
	}
	return nil
}

func topEntries(rows []model.RankedRow, n int, order Order) []types.Entry {
	if order == OrderPredicted {
		rows = ranking.ByPredicted(rows)
	}
	if n > 0 && n < len(rows) {
		rows = rows[:n]
	}
	out := make([]types.Entry, len(rows))
	for i, r := range rows {
		out[i] = toEntry(r)
	}
	return out
}

// snapshot returns the season summary and its rows in actual-rank order,
// both read under one lock.
func (s *ResultStore) snapshot(year int) (model.SeasonSummary, []model.RankedRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return model.SeasonSummary{}, nil, ErrNotReady
	}
	ss, ok := s.seasons[year]
	if !ok {
		return model.SeasonSummary{}, nil, fmt.Errorf("season %d: %w", year, ErrNotFound)
	}
	return ss, s.result.Rows(year), nil
}
