package redistribution

import "errors"

// Sentinel kinds for redistribution errors.
var (
	ErrUnknownPolicy = errors.New("unknown redistribution policy")
)
