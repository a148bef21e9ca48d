package streak

import (
	"fmt"
	"time"

	"lapseless/internal/model"
)

// Input is everything needed to recompute one habit.
type Input struct {
	Habit   model.Habit
	Entries []model.HabitEntry
	Issued  []model.Achievement
	Today   time.Time
}

// Result is the recomputed state of one habit.
type Result struct {
	HabitID       uint
	UserID        uint
	CurrentStreak int
	LongestStreak int
	// Changed is set when either streak differs from the persisted value.
	Changed bool
	// Pending are milestones reached but not yet recorded, ascending.
	Pending []Milestone
	// StartDateErr is set when the habit start date could not be parsed;
	// the streak is then treated as zero.
	StartDateErr error
	// SkippedEntries lists entries without a usable timestamp. Any such
	// entry zeroes the streak since it may hide a relapse.
	SkippedEntries []uint
}

// Evaluate recomputes a habit's streaks and pending milestones. Both the
// interactive path and the batch job go through here.
func Evaluate(in Input) Result {
	h := in.Habit
	res := Result{
		HabitID:        h.ID,
		UserID:         h.UserID,
		SkippedEntries: MalformedEntries(in.Entries, h.ID),
	}

	start, err := ParseDate(h.StartDate)
	if err != nil {
		res.StartDateErr = fmt.Errorf("habit %d start date: %w", h.ID, err)
	} else {
		var relapse *time.Time
		if t, ok := LastRelapseDate(in.Entries, h.ID); ok {
			relapse = &t
		}
		res.CurrentStreak = CurrentStreak(start, relapse, in.Today)
	}
	if len(res.SkippedEntries) > 0 {
		res.CurrentStreak = 0
	}

	res.LongestStreak = LongestStreak(h.LongestStreak, res.CurrentStreak)
	res.Changed = res.CurrentStreak != h.CurrentStreak || res.LongestStreak != h.LongestStreak
	res.Pending = Pending(res.CurrentStreak, h.ID, in.Issued)
	return res
}
