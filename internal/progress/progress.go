// Package progress turns task completions and daily sweeps into XP and streak
// changes on a user.
package progress

import (
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/models"
)

// Engine applies completions against the injected clock.
type Engine struct {
	clock calendar.Clock
}

func NewEngine(clock calendar.Clock) *Engine {
	return &Engine{clock: clock}
}

// HandleTaskCompletion credits xp to user for a task completed today.
// A nil user is a no-op.
func (e *Engine) HandleTaskCompletion(user *models.User, xp int) {
	if user == nil {
		return
	}
	next := Complete(user.Progress, user.DailyXPQuota, xp, user.DayOffSet(), e.clock.Today())
	user.ApplyProgress(next)
}

// Complete returns the progress after completing a task worth xp on today.
//
// On an off day no XP is added but the day still counts towards the streak.
// Otherwise XP is added and, once it reaches quota, the streak advances and
// quota is subtracted, carrying any excess over. The day is credited at most once.
func Complete(p models.Progress, quota, xp int, daysOff calendar.Set, today time.Time) models.Progress {
	offToday := daysOff.Contains(today)
	if !offToday {
		p.CurrentXP += xp
	}

	if !offToday && p.CurrentXP < quota {
		return p
	}
	if creditedOn(p, today) {
		return p
	}
	return credit(p, quota, !offToday, daysOff, today)
}

// ReconcileQuota credits day to a user whose balance reached quota without
// day or any later day being credited yet. The second result reports whether
// anything changed.
func ReconcileQuota(p models.Progress, quota int, daysOff calendar.Set, day time.Time) (models.Progress, bool) {
	if p.CurrentXP < quota {
		return p, false
	}
	if p.LastAchievedDate != nil && !calendar.Before(*p.LastAchievedDate, day) {
		return p, false
	}
	return credit(p, quota, true, daysOff, day), true
}

// MissedQuota reports whether a user failed day: not off, not credited.
func MissedQuota(p models.Progress, daysOff calendar.Set, day time.Time) bool {
	if daysOff.Contains(day) {
		return false
	}
	return p.LastAchievedDate == nil || calendar.Before(*p.LastAchievedDate, day)
}

// ResetStreak zeroes the streak of a user who missed a day.
func ResetStreak(p models.Progress) models.Progress {
	p.CurrentStreak = 0
	return p
}

// Penalize removes one XP per overdue task, never going below zero.
func Penalize(p models.Progress, overdue int) models.Progress {
	p.CurrentXP -= overdue
	if p.CurrentXP < 0 {
		p.CurrentXP = 0
	}
	return p
}

func creditedOn(p models.Progress, day time.Time) bool {
	return p.LastAchievedDate != nil && calendar.Equal(*p.LastAchievedDate, day)
}

func credit(p models.Progress, quota int, subtractQuota bool, daysOff calendar.Set, day time.Time) models.Progress {
	p.CurrentStreak = nextStreak(p.CurrentStreak, p.LastAchievedDate, daysOff, day)
	if subtractQuota {
		p.CurrentXP -= quota
	}
	d := calendar.Truncate(day)
	p.LastAchievedDate = &d
	return p
}

// nextStreak extends the streak when day follows lastAchieved directly or
// every day in between was off. Any other gap starts a new streak at 1.
func nextStreak(streak int, lastAchieved *time.Time, daysOff calendar.Set, day time.Time) int {
	if lastAchieved == nil {
		return 1
	}
	if calendar.Equal(calendar.AddDays(*lastAchieved, 1), day) {
		return streak + 1
	}
	if !calendar.Before(*lastAchieved, day) {
		return 1
	}
	for d := calendar.AddDays(*lastAchieved, 1); calendar.Before(d, day); d = calendar.AddDays(d, 1) {
		if !daysOff.Contains(d) {
			return 1
		}
	}
	return streak + 1
}
