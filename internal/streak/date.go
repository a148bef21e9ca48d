// Package streak derives streak counters and milestone achievements from a
// habit's entry history. Everything here is pure: callers pass the current
// date and the persisted records in, and persist whatever comes back out.
package streak

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date projection used for entries and start dates.
const DateLayout = "2006-01-02"

var ErrEmptyDate = errors.New("empty date")

// Day strips the time of day from t. The calendar date is taken literally in
// t's own location and the result is midnight UTC, so day arithmetic is exact.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StoredTime relabels the wall clock of t as UTC. Entry timestamps are written
// this way so their calendar date does not depend on the driver or session
// time zone they are read back through.
func StoredTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// EntryDate is the calendar date of a timestamp written with StoredTime.
func EntryDate(t time.Time) time.Time {
	return Day(t.UTC())
}

// DateKey returns the YYYY-MM-DD projection of t.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date. Longer values such as full timestamps
// are accepted and only their date prefix is used.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}

// DaysBetween counts whole calendar days from a to b, clamped at zero.
func DaysBetween(a, b time.Time) int {
	n := int(Day(b).Sub(Day(a)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
