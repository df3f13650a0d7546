// Package contract classifies a client's contract-period string into a
// lifecycle status. The deriver is total: every malformed input falls back
// to StatusHold instead of returning an error.
package contract

import (
	"strings"
	"time"
)

// Status is a contract lifecycle state.
type Status string

// Contract lifecycle states.
const (
	StatusInForce  Status = "in_force"
	StatusProposal Status = "proposal"
	StatusDone     Status = "done"
	StatusHold     Status = "hold"
)

// Accepted date layouts. Two-digit years resolve per Go's reference-layout
// rules ("1/2/06"); four-digit years are accepted as well.
var dateLayouts = []string{"1/2/06", "1/2/2006"}

// Derive classifies a contract-period string relative to now.
//
// Recognized shapes (prefixes are case-insensitive):
//
//	"M/D/YY-M/D/YY"  date range
//	"Expired M/D/YY" done, the trailing date is not parsed
//	"expires M/D/YY" single end date
func Derive(period string, now time.Time) Status {
	period = strings.TrimSpace(period)
	if period == "" {
		return StatusHold
	}

	lower := strings.ToLower(period)
	switch {
	case strings.HasPrefix(lower, "expired"):
		return StatusDone
	case strings.HasPrefix(lower, "expires"):
		end, ok := parseDate(period[len("expires"):])
		if !ok {
			return StatusHold
		}
		if end.Before(now) {
			return StatusDone
		}
		return StatusInForce
	}

	start, end, ok := parseRange(period)
	if !ok {
		return StatusHold
	}
	switch {
	case !now.Before(start) && !now.After(end):
		return StatusInForce
	case end.Before(now):
		return StatusDone
	case start.After(now):
		return StatusProposal
	default:
		return StatusHold
	}
}

// parseRange splits a "start-end" period on the first dash and parses both
// bounds.
func parseRange(period string) (start, end time.Time, ok bool) {
	first, rest, found := strings.Cut(period, "-")
	if !found {
		return time.Time{}, time.Time{}, false
	}
	start, okStart := parseDate(first)
	end, okEnd := parseDate(rest)
	if !okStart || !okEnd {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
