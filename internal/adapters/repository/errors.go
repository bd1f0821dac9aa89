package repository

import (
	"fmt"

	"github.com/okian/volmatch/pkg/errs"
)

// Sentinel kinds for repository errors. They wrap the shared error kinds so
// callers may match either.
var (
	ErrNotFound      = fmt.Errorf("record %w", errs.ErrNotFound)
	ErrUnavailable   = fmt.Errorf("backend %w", errs.ErrStoreUnavailable)
	ErrInvalidSeed   = fmt.Errorf("seed: %w", errs.ErrInvalidInput)
	ErrInvalidRecord = fmt.Errorf("history record: %w", errs.ErrInvalidInput)
)
