package features

import "errors"

// ErrConfiguration means a predictor or target column required by the Spec is absent.
var ErrConfiguration = errors.New("feature configuration error")
