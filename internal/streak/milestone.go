package streak

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"lapseless/internal/model"
)

// Milestone is a streak threshold that earns an achievement once per habit.
type Milestone struct {
	Type string
	Days int
}

// Named milestones. Every other multiple of genericStep is a generic "days_N" milestone.
var named = []Milestone{
	{Type: "first_day", Days: 1},
	{Type: "first_week", Days: 7},
	{Type: "first_month", Days: 30},
	{Type: "three_months", Days: 90},
	{Type: "six_months", Days: 180},
	{Type: "one_year", Days: 365},
}

const genericStep = 10

var labels = map[string]string{
	"first_day":    "First day",
	"first_week":   "First week",
	"first_month":  "First month",
	"three_months": "Three months",
	"six_months":   "Six months",
	"one_year":     "One year",
}

// MilestoneAt returns the milestone whose threshold is exactly days.
func MilestoneAt(days int) (Milestone, bool) {
	if days <= 0 {
		return Milestone{}, false
	}
	for _, m := range named {
		if m.Days == days {
			return m, true
		}
	}
	if days%genericStep == 0 {
		return Milestone{Type: fmt.Sprintf("days_%d", days), Days: days}, true
	}
	return Milestone{}, false
}

// LabelFor resolves a stored achievement type to its label.
func LabelFor(achievementType string, days int) string {
	if l, ok := labels[achievementType]; ok {
		return l
	}
	if strings.HasPrefix(achievementType, "days_") {
		return fmt.Sprintf("%d days", days)
	}
	return achievementType
}

// Milestones lists every milestone with a threshold <= upTo, ascending.
func Milestones(upTo int) []Milestone {
	if upTo <= 0 {
		return nil
	}
	var out []Milestone
	for _, m := range named {
		if m.Days <= upTo {
			out = append(out, m)
		}
	}
	for d := genericStep; d <= upTo; d += genericStep {
		m, _ := MilestoneAt(d)
		if !isNamed(m.Type) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Days < out[j].Days })
	return out
}

// NextMilestone returns the highest milestone reached by currentStreak.
func NextMilestone(currentStreak int) (Milestone, bool) {
	all := Milestones(currentStreak)
	if len(all) == 0 {
		return Milestone{}, false
	}
	return all[len(all)-1], true
}

// Pending returns the milestones reached by currentStreak that have no
// achievement yet among issued, ascending. Only rows for habitID count.
func Pending(currentStreak int, habitID uint, issued []model.Achievement) []Milestone {
	if currentStreak <= 0 {
		return nil
	}
	have := issuedTypes(habitID, issued)
	var out []Milestone
	for _, m := range Milestones(currentStreak) {
		if !have[m.Type] {
			out = append(out, m)
		}
	}
	return out
}

// IssueIfNew builds the achievement for m unless the habit already holds one
// of the same type. userCount is the number of achievements the user already
// owns across all habits; the new record takes the next number.
func IssueIfNew(habitID, userID uint, m Milestone, existing []model.Achievement, userCount int64, now time.Time) *model.Achievement {
	if issuedTypes(habitID, existing)[m.Type] {
		return nil
	}
	return &model.Achievement{
		UserID:            userID,
		HabitID:           habitID,
		Type:              m.Type,
		Days:              m.Days,
		AchievedAt:        now,
		AchievementNumber: int(userCount) + 1,
	}
}

func issuedTypes(habitID uint, issued []model.Achievement) map[string]bool {
	have := make(map[string]bool, len(issued))
	for _, a := range issued {
		if a.HabitID == habitID {
			have[a.Type] = true
		}
	}
	return have
}

func isNamed(t string) bool {
	_, ok := labels[t]
	return ok
}
