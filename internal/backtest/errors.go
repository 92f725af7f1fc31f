package backtest

import "errors"

var (
	// ErrInsufficientHistory means the warmup leaves no season to evaluate.
	ErrInsufficientHistory = errors.New("backtest: insufficient history")
	// ErrNoScoredSeasons means every evaluable season was skipped.
	ErrNoScoredSeasons = errors.New("backtest: no season could be scored")
	ErrNilFactory      = errors.New("backtest: nil model factory")
	// ErrUnknownSeason means the requested target season has no rows.
	ErrUnknownSeason = errors.New("backtest: unknown season")
)
