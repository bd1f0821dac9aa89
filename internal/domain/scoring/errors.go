package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrUnknownLevel = errors.New("unknown preference level")
)
