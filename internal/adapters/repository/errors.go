package repository

import "errors"

// Sentinel kinds for portfolio errors.
var (
	ErrClientNotFound  = errors.New("client not found")
	ErrPartnerNotFound = errors.New("partner not found")
	ErrMissingID       = errors.New("record has no id")
)
