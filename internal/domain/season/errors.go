package season

import "errors"

var (
	ErrMissingColumn   = errors.New("season table: missing column")
	ErrDuplicateRecord = errors.New("season table: duplicate (player, year)")
	ErrInvalidValue    = errors.New("season table: invalid value")
)
