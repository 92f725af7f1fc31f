package filter

import "errors"

var (
	ErrCompile    = errors.New("filter: compile failed")
	ErrNotBoolean = errors.New("filter: expression is not boolean")
	ErrEval       = errors.New("filter: evaluation failed")
)
