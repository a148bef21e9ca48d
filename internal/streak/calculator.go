package streak

import "time"

// CurrentStreak counts consecutive success days up to and including today.
//
// A habit that starts today has a streak of one. A relapse on or after the
// start date restarts the count on the following day, so a relapse today
// yields zero. Start dates in the future also yield zero.
func CurrentStreak(startDate time.Time, lastRelapse *time.Time, today time.Time) int {
	start := Day(startDate)
	now := Day(today)
	if start.After(now) {
		return 0
	}

	anchor := start
	if lastRelapse != nil {
		relapse := Day(*lastRelapse)
		if !relapse.Before(start) {
			anchor = relapse.AddDate(0, 0, 1)
		}
	}
	if anchor.After(now) {
		return 0
	}
	return DaysBetween(anchor, now) + 1
}

// LongestStreak never lets the recorded maximum drop below either value.
func LongestStreak(persisted, current int) int {
	if persisted < 0 {
		persisted = 0
	}
	return max(persisted, current)
}
