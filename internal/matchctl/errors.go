package matchctl

import (
	"errors"
	"fmt"

	"github.com/okian/volmatch/pkg/errs"
)

// Sentinel errors for client and verification failures.
var (
	ErrUnexpectedStatus = errors.New("unexpected response status")
	ErrOrderChanged     = errors.New("match order changed between listings")
	ErrSkillMismatch    = errors.New("volunteer shares no required skill")
)

// APIError is a failure body returned by the service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Unwrap exposes the error kind named by Code.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case errs.CodeNotFound:
		return errs.ErrNotFound
	case errs.CodeInvalidInput:
		return errs.ErrInvalidInput
	case errs.CodePartialFailure:
		return errs.ErrPartialFailure
	case errs.CodeStoreUnavailable:
		return errs.ErrStoreUnavailable
	default:
		return ErrUnexpectedStatus
	}
}
