package dayoff

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
)

// ErrDayOffState is wrapped by every admission failure.
var ErrDayOffState = errors.New("day off change not allowed")

var (
	ErrOutsideCurrentWeek = fmt.Errorf("%w: date must be between today and the end of the week", ErrDayOffState)
	ErrNoDaysOffLeft      = fmt.Errorf("%w: no days off available", ErrDayOffState)
	ErrAlreadyDayOff      = fmt.Errorf("%w: day off already set", ErrDayOffState)
	ErrDeadlineOnDate     = fmt.Errorf("%w: a task has its deadline on that date", ErrDayOffState)
	ErrNotDayOff          = fmt.Errorf("%w: date is not a day off", ErrDayOffState)
	ErrRemoveToday        = fmt.Errorf("%w: cannot remove today's day off", ErrDayOffState)
)

// CheckTake reports whether date may be declared off given the remaining
// allowance, the current days off and the deadlines of the user's tasks.
func CheckTake(allowance int, daysOff calendar.Set, deadlines []time.Time, date, today time.Time) error {
	if !calendar.InCurrentWeek(date, today) {
		return ErrOutsideCurrentWeek
	}
	if allowance < 1 {
		return ErrNoDaysOffLeft
	}
	if daysOff.Contains(date) {
		return ErrAlreadyDayOff
	}
	for _, d := range deadlines {
		if calendar.Equal(d, date) {
			return ErrDeadlineOnDate
		}
	}
	return nil
}

// CheckReturn reports whether date may be removed from the days off.
func CheckReturn(daysOff calendar.Set, date, today time.Time) error {
	if !daysOff.Contains(date) {
		return ErrNotDayOff
	}
	if calendar.Equal(date, today) {
		return ErrRemoveToday
	}
	return nil
}
