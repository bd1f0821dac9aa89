package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("malformed request body")
)
