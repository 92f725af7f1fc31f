package scoring

import "errors"

// ErrInvalidCutoff means the precision score collected no samples: the cutoff
// is below 1 or the ranking is empty.
var ErrInvalidCutoff = errors.New("invalid cutoff")
