package streak

import (
	"time"

	"lapseless/internal/model"
)

// IsCompletedOn reports whether habitID has a completion entry on the calendar
// date of date. Duplicate entries for the same day are harmless.
func IsCompletedOn(entries []model.HabitEntry, habitID uint, date time.Time) bool {
	key := DateKey(date)
	for _, e := range entries {
		if e.HabitID != habitID || e.IsRelapse || e.CompletedAt.IsZero() {
			continue
		}
		if DateKey(EntryDate(e.CompletedAt)) == key {
			return true
		}
	}
	return false
}

// LastRelapseDate returns the calendar date of the latest relapse for habitID.
// Relapses sharing a timestamp resolve to the one with the highest id.
func LastRelapseDate(entries []model.HabitEntry, habitID uint) (time.Time, bool) {
	var (
		last  model.HabitEntry
		found bool
	)
	for _, e := range entries {
		if e.HabitID != habitID || !e.IsRelapse || e.CompletedAt.IsZero() {
			continue
		}
		if !found || e.CompletedAt.After(last.CompletedAt) ||
			(e.CompletedAt.Equal(last.CompletedAt) && e.ID > last.ID) {
			last = e
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return EntryDate(last.CompletedAt), true
}

// MalformedEntries returns ids of entries for habitID without a usable timestamp.
func MalformedEntries(entries []model.HabitEntry, habitID uint) []uint {
	var ids []uint
	for _, e := range entries {
		if e.HabitID == habitID && e.CompletedAt.IsZero() {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
