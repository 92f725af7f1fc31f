package repository

import "errors"

// Sentinel kinds for result store and sink errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidLimit      = errors.New("invalid ranking limit")
	ErrInvalidOrder      = errors.New("invalid ranking order")
	ErrNotReady          = errors.New("no backtest result published")
	ErrInvalidInput      = errors.New("invalid season input")
	ErrUnsupportedFormat = errors.New("unsupported summary format")
)
