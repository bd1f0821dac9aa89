// Package errs defines the error kinds shared by the matching service and
// the helpers used to attach an operation name to them.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPartialFailure   = errors.New("partial failure")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error is an operation-scoped error carrying a kind and an optional cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// New returns an error of the given kind for op.
func New(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap annotates err with op. The kind is inherited from err, if any.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind annotates err with op and kind.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return New(op, kind)
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of the outermost *Error carrying one. Otherwise
// it returns the first known kind found in err's chain, or nil. Partial
// failure is checked first because it may wrap per-record kinds.
func KindOf(err error) error {
	var e *Error
	for errors.As(err, &e) {
		if e.Kind != nil {
			return e.Kind
		}
		err = e.Err
	}
	for _, kind := range []error{ErrPartialFailure, ErrInvalidInput, ErrNotFound, ErrStoreUnavailable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Stable machine-readable codes for the error kinds.
const (
	CodeNotFound         = "not_found"
	CodeInvalidInput     = "invalid_input"
	CodePartialFailure   = "partial_failure"
	CodeStoreUnavailable = "store_unavailable"
	CodeInternal         = "internal"
)

// Code returns the machine-readable code of err's kind.
func Code(err error) string {
	switch KindOf(err) {
	case ErrNotFound:
		return CodeNotFound
	case ErrInvalidInput:
		return CodeInvalidInput
	case ErrPartialFailure:
		return CodePartialFailure
	case ErrStoreUnavailable:
		return CodeStoreUnavailable
	default:
		return CodeInternal
	}
}
