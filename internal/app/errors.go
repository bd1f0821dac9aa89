package service

import (
	"errors"
	"fmt"

	"github.com/okian/volmatch/pkg/errs"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted       = fmt.Errorf("service not started: %w", errs.ErrStoreUnavailable)
	ErrMissingEventID   = errors.New("eventId is required")
	ErrNoVolunteers     = errors.New("volunteerIds must not be empty")
	ErrBlankVolunteerID = errors.New("volunteerIds must not contain blank ids")
)
