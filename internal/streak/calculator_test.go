package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var today = time.Date(2026, 3, 15, 18, 30, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func ptr(t time.Time) *time.Time { return &t }

func TestCurrentStreak(t *testing.T) {
	cases := []struct {
		name    string
		start   time.Time
		relapse *time.Time
		want    int
	}{
		{"future start", today.AddDate(0, 0, 1), nil, 0},
		{"same day start", today, nil, 1},
		{"ten days no relapse", daysAgo(9), nil, 10},
		{"relapse resets", daysAgo(30), ptr(daysAgo(5)), 5},
		{"relapse today", daysAgo(30), ptr(today), 0},
		{"relapse yesterday", daysAgo(30), ptr(daysAgo(1)), 1},
		{"relapse before start ignored", daysAgo(3), ptr(daysAgo(10)), 4},
		{"relapse on start day", daysAgo(3), ptr(daysAgo(3)), 3},
		{"relapse in the future", daysAgo(3), ptr(today.AddDate(0, 0, 2)), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrentStreak(tc.start, tc.relapse, today))
		})
	}
}

func TestCurrentStreakIgnoresTimeOfDay(t *testing.T) {
	start := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	morning := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 2, CurrentStreak(start, nil, morning))
}

func TestCurrentStreakUsesLiteralDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	// 2026-03-15 01:00 in UTC+10 is still the 14th in UTC; the literal date wins.
	relapse := time.Date(2026, 3, 15, 1, 0, 0, 0, loc)
	assert.Equal(t, 0, CurrentStreak(daysAgo(10), &relapse, today))
}

func TestLongestStreakIsMonotonic(t *testing.T) {
	longest := 0
	for _, current := range []int{1, 2, 3, 0, 1, 2, 5, 0} {
		next := LongestStreak(longest, current)
		assert.GreaterOrEqual(t, next, longest)
		assert.GreaterOrEqual(t, next, current)
		longest = next
	}
	assert.Equal(t, 5, longest)
}

func TestLongestStreakHealsTamperedValue(t *testing.T) {
	assert.Equal(t, 12, LongestStreak(3, 12))
	assert.Equal(t, 4, LongestStreak(-7, 4))
}

func TestDaysBetweenClampsNegative(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(today, daysAgo(4)))
	assert.Equal(t, 4, DaysBetween(daysAgo(4), today))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-01", DateKey(d))

	d, err = ParseDate("2026-03-01T22:10:00+05:00")
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-01", DateKey(d))

	_, err = ParseDate("")
	assert.ErrorIs(t, err, ErrEmptyDate)

	_, err = ParseDate("03/01/2026")
	assert.Error(t, err)
}
