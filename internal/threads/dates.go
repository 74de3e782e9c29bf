package threads

import "time"

// IsValidTime reports whether t is usable for ordering and windowing.
// Zero values and timestamps outside the years 1970-9999 are treated as absent.
func IsValidTime(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	year := t.UTC().Year()
	return year >= 1970 && year <= 9999
}

// firstValidTime returns the first candidate that is non-nil and valid,
// converted to UTC, or the zero time when none is.
func firstValidTime(candidates ...*time.Time) time.Time {
	for _, c := range candidates {
		if c != nil && IsValidTime(*c) {
			return c.UTC()
		}
	}
	return time.Time{}
}
