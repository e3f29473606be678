// Package timezone resolves IANA timezone identifiers for day-level
// grouping. A journal entry written at 23:30 local time belongs to that
// local day, not the UTC one.
package timezone

import (
	"fmt"
	"time"
)

// ParseTimezone parses an IANA timezone identifier (e.g. "Europe/Paris").
// Empty input and "UTC" resolve to UTC; invalid input returns UTC and
// an error so callers can degrade instead of failing.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// IsValidTimezone reports whether tz resolves to a known location.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// DayKey formats a Unix timestamp as a YYYY-MM-DD key in the given
// timezone. A nil location means UTC.
func DayKey(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(ts, 0).In(loc).Format("2006-01-02")
}

// StartOfDay returns midnight of t's day in the given timezone.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
