package eligibility

import "errors"

// Sentinel kinds for eligibility errors.
var (
	ErrUnknownPolicy = errors.New("unknown match policy")
)
