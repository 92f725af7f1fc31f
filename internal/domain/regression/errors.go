package regression

import "errors"

var (
	ErrNotFitted         = errors.New("regression: model not fitted")
	ErrDimensionMismatch = errors.New("regression: dimension mismatch")
	ErrSingular          = errors.New("regression: singular system")
)
