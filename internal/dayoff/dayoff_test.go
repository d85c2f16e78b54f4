package dayoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/taskgraph"
)

// Thursday.
var today = calendar.Date(2026, time.October, 15)

func day(offset int) time.Time {
	return calendar.AddDays(today, offset)
}

func ptr(t time.Time) *time.Time {
	return &t
}

func dueOf(t *testing.T, g *taskgraph.Graph, id uint64) time.Time {
	t.Helper()
	n, ok := g.Get(id)
	require.True(t, ok)
	require.NotNil(t, n.DueDate)
	return *n.DueDate
}

func TestNextAvailable(t *testing.T) {
	off := calendar.NewSet(day(1), day(2))

	assert.Equal(t, day(0), NextAvailable(off, day(0)))
	assert.Equal(t, day(3), NextAvailable(off, day(1)))
}

func TestRelocate_MovesToNextFreeDay(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(1)), Deadline: day(2)})

	moves := Relocate(g, calendar.NewSet(day(1)), today)

	require.Len(t, moves, 1)
	assert.Equal(t, Move{TaskID: 1, From: day(1), To: day(2)}, moves[0])
	assert.Equal(t, day(2), dueOf(t, g, 1))
}

func TestRelocate_NeverPassesDeadline(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(1)), Deadline: day(1)})
	g.Add(taskgraph.Node{ID: 2, DueDate: ptr(day(1)), Deadline: day(2)})

	moves := Relocate(g, calendar.NewSet(day(1), day(2)), today)

	assert.Empty(t, moves)
	assert.Equal(t, day(1), dueOf(t, g, 1))
	assert.Equal(t, day(1), dueOf(t, g, 2))
}

func TestRelocate_SkipsDoneAndUndatedTasks(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(1)), Deadline: day(5), Done: true})
	g.Add(taskgraph.Node{ID: 2, Deadline: day(5)})

	assert.Empty(t, Relocate(g, calendar.NewSet(day(1)), today))
	assert.Equal(t, day(1), dueOf(t, g, 1))
}

func TestRelocate_TodayOffPushesTodaysTasks(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(0)), Deadline: day(3)})
	g.Add(taskgraph.Node{ID: 2, DueDate: ptr(day(2)), Deadline: day(3)})

	moves := Relocate(g, calendar.NewSet(day(0)), today)

	require.Len(t, moves, 1)
	assert.Equal(t, day(1), dueOf(t, g, 1))
	assert.Equal(t, day(2), dueOf(t, g, 2))
}

func TestRelocate_SubtaskCappedByParentDueDate(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(3)), Deadline: day(6)})
	g.Add(taskgraph.Node{ID: 2, DueDate: ptr(day(1)), Deadline: day(5)})
	g.Add(taskgraph.Node{ID: 3, DueDate: ptr(day(2)), Deadline: day(5)})
	require.NoError(t, g.Attach(1, 2))
	require.NoError(t, g.Attach(1, 3))

	// Day 1 and 2 off: subtask 2 would land on day 3, subtask 3 as well.
	// Day 3 is also off, so the parent moves to day 4 first and both fit below it.
	moves := Relocate(g, calendar.NewSet(day(1), day(2), day(3)), today)

	require.Len(t, moves, 3)
	assert.Equal(t, uint64(1), moves[0].TaskID)
	assert.Equal(t, day(4), dueOf(t, g, 1))
	assert.Equal(t, day(4), dueOf(t, g, 2))
	assert.Equal(t, day(4), dueOf(t, g, 3))
}

func TestRelocate_SubtaskStaysWhenParentCannotMove(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(2)), Deadline: day(2)})
	g.Add(taskgraph.Node{ID: 2, DueDate: ptr(day(1)), Deadline: day(2)})
	require.NoError(t, g.Attach(1, 2))

	// The parent is pinned by its deadline; the subtask would land on day 3,
	// past the parent's due date.
	moves := Relocate(g, calendar.NewSet(day(1), day(2)), today)

	assert.Empty(t, moves)
	assert.Equal(t, day(2), dueOf(t, g, 1))
	assert.Equal(t, day(1), dueOf(t, g, 2))
}

func TestRelocate_MostUrgentFirst(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(1)), Deadline: day(6)})
	g.Add(taskgraph.Node{ID: 2, DueDate: ptr(day(1)), Deadline: day(3)})
	g.Add(taskgraph.Node{ID: 3, DueDate: ptr(day(1)), Deadline: day(6)})

	moves := Relocate(g, calendar.NewSet(day(1)), today)

	require.Len(t, moves, 3)
	assert.Equal(t, []uint64{2, 1, 3}, []uint64{moves[0].TaskID, moves[1].TaskID, moves[2].TaskID})
}

func TestRelocate_Idempotent(t *testing.T) {
	g := taskgraph.New()
	g.Add(taskgraph.Node{ID: 1, DueDate: ptr(day(1)), Deadline: day(4)})
	g.Add(taskgraph.Node{ID: 2, DueDate: ptr(day(0)), Deadline: day(1)})
	g.Add(taskgraph.Node{ID: 3, DueDate: ptr(day(1)), Deadline: day(3)})
	require.NoError(t, g.Attach(1, 3))
	off := calendar.NewSet(day(0), day(1))

	first := Relocate(g, off, today)
	require.NotEmpty(t, first)

	assert.Empty(t, Relocate(g, off, today))
}

func TestCheckTake(t *testing.T) {
	tests := []struct {
		name      string
		allowance int
		daysOff   calendar.Set
		deadlines []time.Time
		date      time.Time
		wantErr   error
	}{
		{name: "allowed", allowance: 2, date: day(1)},
		{name: "today allowed", allowance: 1, date: day(0)},
		{name: "past date", allowance: 2, date: day(-1), wantErr: ErrOutsideCurrentWeek},
		{name: "next week", allowance: 2, date: day(4), wantErr: ErrOutsideCurrentWeek},
		{name: "sunday is last day", allowance: 2, date: day(3)},
		{name: "no allowance", allowance: 0, date: day(1), wantErr: ErrNoDaysOffLeft},
		{name: "already off", allowance: 1, daysOff: calendar.NewSet(day(1)), date: day(1), wantErr: ErrAlreadyDayOff},
		{name: "deadline on date", allowance: 2, deadlines: []time.Time{day(2), day(1)}, date: day(1), wantErr: ErrDeadlineOnDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTake(tt.allowance, tt.daysOff, tt.deadlines, tt.date, today)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrDayOffState)
		})
	}
}

func TestCheckReturn(t *testing.T) {
	off := calendar.NewSet(day(0), day(2))

	assert.NoError(t, CheckReturn(off, day(2), today))
	assert.ErrorIs(t, CheckReturn(off, day(1), today), ErrNotDayOff)
	assert.ErrorIs(t, CheckReturn(off, day(0), today), ErrRemoveToday)
}
