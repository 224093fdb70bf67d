package tools

import (
	"fmt"
	"strings"
	"time"
)

// dayBound selects how a date without a time of day is resolved. Lower bounds
// of a range snap to midnight, upper bounds to the last second of the day.
type dayBound int

const (
	boundStart dayBound = iota
	boundEnd
)

// Layouts tried for absolute values, most specific first. Layouts without a
// zone are resolved in the reference time's location.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateLayout = "2006-01-02"

// parseTime resolves a user- or model-supplied time expression relative to now.
// Accepted forms: RFC3339, a date-time without zone, a bare date, and the
// relative words "now", "today", "tomorrow" and "yesterday", optionally
// prefixed with "start of" or "end of".
func parseTime(value string, bound dayBound, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}

	// Only the relative words are case-insensitive. Layout matching is
	// byte-exact, so absolute forms parse the original string; lowercasing
	// them would reject RFC3339's literal T and Z.
	if t, ok := parseRelative(strings.ToLower(s), bound, now); ok {
		return t, nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	if t, err := time.ParseInLocation(dateLayout, s, now.Location()); err == nil {
		return snapToDay(t, bound), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized time %q; use RFC3339, YYYY-MM-DD, or a relative day like \"tomorrow\"", value)
}

// parseRelative handles "now" and day words, with optional bound prefixes.
func parseRelative(s string, bound dayBound, now time.Time) (time.Time, bool) {
	switch {
	case strings.HasPrefix(s, "start of "):
		bound = boundStart
		s = strings.TrimPrefix(s, "start of ")
	case strings.HasPrefix(s, "beginning of "):
		bound = boundStart
		s = strings.TrimPrefix(s, "beginning of ")
	case strings.HasPrefix(s, "end of "):
		bound = boundEnd
		s = strings.TrimPrefix(s, "end of ")
	default:
		if s == "now" {
			return now, true
		}
	}

	var day time.Time
	switch strings.TrimSpace(s) {
	case "now", "today":
		day = now
	case "tomorrow":
		day = now.AddDate(0, 0, 1)
	case "yesterday":
		day = now.AddDate(0, 0, -1)
	default:
		return time.Time{}, false
	}

	return snapToDay(day, bound), true
}

func snapToDay(t time.Time, bound dayBound) time.Time {
	year, month, day := t.Date()
	if bound == boundEnd {
		return time.Date(year, month, day, 23, 59, 59, 0, t.Location())
	}
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
