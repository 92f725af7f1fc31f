package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrNotReady   = errors.New("not ready")
)

// Kind is an API error tagged with the operation that failed and a sentinel
// kind the handlers map to a status code.
type Kind struct {
	Op   string
	Kind error
	Err  error
}

// NewKind returns a Kind with no underlying cause.
func NewKind(op string, kind error) error {
	return &Kind{Op: op, Kind: kind}
}

// WrapKind tags err with op and kind.
func WrapKind(op string, kind, err error) error {
	return &Kind{Op: op, Kind: kind, Err: err}
}

// Wrap tags err with op only.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Kind{Op: op, Err: err}
}

func (k *Kind) Error() string {
	switch {
	case k.Kind != nil && k.Err != nil:
		return fmt.Sprintf("%s: %v: %v", k.Op, k.Kind, k.Err)
	case k.Kind != nil:
		return fmt.Sprintf("%s: %v", k.Op, k.Kind)
	case k.Err != nil:
		return fmt.Sprintf("%s: %v", k.Op, k.Err)
	default:
		return k.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (k *Kind) Unwrap() []error {
	var errs []error
	if k.Kind != nil {
		errs = append(errs, k.Kind)
	}
	if k.Err != nil {
		errs = append(errs, k.Err)
	}
	return errs
}
