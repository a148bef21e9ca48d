package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var (
	ErrHabitNotFound = errors.New("habit not found")
	ErrEntryNotFound = errors.New("entry not found")
	ErrInvalidDate   = errors.New("invalid date")
	ErrFutureEntry   = errors.New("entry date is in the future")
	ErrRunInProgress = errors.New("reconciliation already running")
	ErrIssueConflict = errors.New("achievement number kept conflicting")
)

// Clock yields "now" in the location used to decide what today is.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Current returns the current instant in the clock's location.
func (c Clock) Current() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

func notFound(err error, sentinel error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %d", sentinel, id)
	}
	return err
}
