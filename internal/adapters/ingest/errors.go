package ingest

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrBadHeader = errors.New("bad csv header")
	ErrBadRow    = errors.New("bad csv row")
)
