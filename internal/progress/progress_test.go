package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/models"
)

var today = calendar.Date(2026, time.October, 15)

func day(offset int) time.Time {
	return calendar.AddDays(today, offset)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestHandleTaskCompletion_QuotaReached(t *testing.T) {
	engine := NewEngine(calendar.FixedClock{Day: today})
	user := &models.User{DailyXPQuota: 5}

	engine.HandleTaskCompletion(user, 6)

	assert.Equal(t, 1, user.Progress.CurrentXP)
	assert.Equal(t, 1, user.Progress.CurrentStreak)
	require.NotNil(t, user.Progress.LastAchievedDate)
	assert.True(t, calendar.Equal(today, *user.Progress.LastAchievedDate))
}

func TestHandleTaskCompletion_BelowQuota(t *testing.T) {
	engine := NewEngine(calendar.FixedClock{Day: today})
	user := &models.User{DailyXPQuota: 10}

	engine.HandleTaskCompletion(user, 3)

	assert.Equal(t, 3, user.Progress.CurrentXP)
	assert.Equal(t, 0, user.Progress.CurrentStreak)
	assert.Nil(t, user.Progress.LastAchievedDate)
}

func TestHandleTaskCompletion_OffDay(t *testing.T) {
	engine := NewEngine(calendar.FixedClock{Day: today})
	user := &models.User{
		DailyXPQuota: 10,
		Progress:     models.Progress{CurrentXP: 7, CurrentStreak: 2, LastAchievedDate: ptr(day(-1))},
		DaysOff:      []models.DayOff{{Date: today}},
	}

	engine.HandleTaskCompletion(user, 4)

	assert.Equal(t, 7, user.Progress.CurrentXP)
	assert.Equal(t, 3, user.Progress.CurrentStreak)
	assert.True(t, calendar.Equal(today, *user.Progress.LastAchievedDate))
}

func TestHandleTaskCompletion_NilUser(t *testing.T) {
	engine := NewEngine(calendar.FixedClock{Day: today})
	assert.NotPanics(t, func() { engine.HandleTaskCompletion(nil, 10) })
}

func TestComplete_AlreadyCreditedToday(t *testing.T) {
	p := models.Progress{CurrentXP: 90, CurrentStreak: 4, LastAchievedDate: ptr(today)}

	got := Complete(p, 100, 10, nil, today)

	assert.Equal(t, 100, got.CurrentXP)
	assert.Equal(t, 4, got.CurrentStreak)
}

func TestComplete_CarriesExcessOver(t *testing.T) {
	p := models.Progress{CurrentXP: 8, CurrentStreak: 1, LastAchievedDate: ptr(day(-1))}

	got := Complete(p, 10, 15, nil, today)

	assert.Equal(t, 13, got.CurrentXP)
	assert.Equal(t, 2, got.CurrentStreak)
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name         string
		streak       int
		lastAchieved *time.Time
		daysOff      calendar.Set
		want         int
	}{
		{name: "first achievement", streak: 0, want: 1},
		{name: "yesterday", streak: 3, lastAchieved: ptr(day(-1)), want: 4},
		{name: "gap fully excused", streak: 3, lastAchieved: ptr(day(-3)), daysOff: calendar.NewSet(day(-2), day(-1)), want: 4},
		{name: "gap partly excused", streak: 3, lastAchieved: ptr(day(-3)), daysOff: calendar.NewSet(day(-1)), want: 1},
		{name: "unexcused gap", streak: 9, lastAchieved: ptr(day(-2)), want: 1},
		{name: "last achieved in the future", streak: 9, lastAchieved: ptr(day(1)), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextStreak(tt.streak, tt.lastAchieved, tt.daysOff, today)
			assert.Equal(t, tt.want, got)
			assert.True(t, got == 1 || got == tt.streak+1, "streak moves by one or resets")
		})
	}
}

func TestReconcileQuota(t *testing.T) {
	p := models.Progress{CurrentXP: 12, CurrentStreak: 1, LastAchievedDate: ptr(day(-1))}

	got, changed := ReconcileQuota(p, 10, nil, today)
	require.True(t, changed)
	assert.Equal(t, 2, got.CurrentXP)
	assert.Equal(t, 2, got.CurrentStreak)

	again, changed := ReconcileQuota(got, 10, nil, today)
	assert.False(t, changed)
	assert.Equal(t, got, again)

	_, changed = ReconcileQuota(models.Progress{CurrentXP: 3}, 10, nil, today)
	assert.False(t, changed)
}

func TestReconcileQuota_LaterDayAlreadyCredited(t *testing.T) {
	// Today's completion landed before the sweep for yesterday got the lock.
	p := models.Progress{CurrentXP: 12, CurrentStreak: 4, LastAchievedDate: ptr(today)}

	got, changed := ReconcileQuota(p, 5, nil, day(-1))

	assert.False(t, changed)
	assert.Equal(t, p, got)
}

func TestMissedQuota(t *testing.T) {
	assert.True(t, MissedQuota(models.Progress{}, nil, today))
	assert.True(t, MissedQuota(models.Progress{LastAchievedDate: ptr(day(-1))}, nil, today))
	assert.False(t, MissedQuota(models.Progress{LastAchievedDate: ptr(today)}, nil, today))
	assert.False(t, MissedQuota(models.Progress{}, calendar.NewSet(today), today))

	assert.Equal(t, 0, ResetStreak(models.Progress{CurrentStreak: 5}).CurrentStreak)
}

func TestPenalize(t *testing.T) {
	assert.Equal(t, 3, Penalize(models.Progress{CurrentXP: 5}, 2).CurrentXP)
	assert.Equal(t, 0, Penalize(models.Progress{CurrentXP: 1}, 4).CurrentXP)
}
