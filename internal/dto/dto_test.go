package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/dayoff"
	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/utils"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("deadline", " 2026-10-17 ")
	require.NoError(t, err)
	assert.Equal(t, calendar.Date(2026, time.October, 17), d)

	_, err = ParseDate("deadline", "17/10/2026")
	assert.EqualError(t, err, "deadline must be a date in YYYY-MM-DD format")
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("due_date", nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	empty := ""
	d, err = ParseOptionalDate("due_date", &empty)
	require.NoError(t, err)
	assert.Nil(t, d)

	value := "2026-10-16"
	d, err = ParseOptionalDate("due_date", &value)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "2026-10-16", calendar.Format(*d))
}

func TestToTaskDTO(t *testing.T) {
	due := calendar.Date(2026, time.October, 16)
	parent := uint64(3)
	task := models.Task{
		ID:          7,
		ParentID:    &parent,
		Name:        "write tests",
		DueDate:     &due,
		Deadline:    calendar.Date(2026, time.October, 18),
		RemainingXP: 10,
		Priority:    models.Priority{ID: 2, Name: "MEDIUM", XP: 10},
		Subtasks: []models.Task{
			{ID: 8, Name: "unit", Deadline: calendar.Date(2026, time.October, 17), Done: true},
		},
	}

	got := ToTaskDTO(task)

	assert.Equal(t, "2026-10-16", *got.DueDate)
	assert.Equal(t, "2026-10-18", got.Deadline)
	assert.Equal(t, &PriorityDTO{ID: 2, Name: "MEDIUM", XP: 10}, got.Priority)
	require.Len(t, got.Subtasks, 1)
	assert.Nil(t, got.Subtasks[0].DueDate)
	assert.True(t, got.Subtasks[0].Done)
}

func TestToTaskListResponse(t *testing.T) {
	params := utils.NewPaginationParams(2, 10)

	got := ToTaskListResponse([]models.Task{{ID: 1, Name: "only"}}, params, 11)

	assert.Len(t, got.Tasks, 1)
	assert.Nil(t, got.Tasks[0].Priority)
	assert.Equal(t, 2, got.Pagination.TotalPages)
}

func TestToDayOffResponse(t *testing.T) {
	last := calendar.Date(2026, time.October, 14)
	user := models.User{
		ID:             1,
		Username:       "alice",
		Progress:       models.Progress{CurrentXP: 4, CurrentStreak: 2, LastAchievedDate: &last},
		DailyXPQuota:   10,
		DaysOffPerWeek: 0,
		DaysOff: []models.DayOff{
			{UserID: 1, Date: calendar.Date(2026, time.October, 17)},
			{UserID: 1, Date: calendar.Date(2026, time.October, 16)},
		},
	}
	moves := []dayoff.Move{{TaskID: 5, From: calendar.Date(2026, time.October, 16), To: calendar.Date(2026, time.October, 18)}}

	got := ToDayOffResponse(user, moves)

	assert.Equal(t, []string{"2026-10-16", "2026-10-17"}, got.User.DaysOff)
	assert.Equal(t, "2026-10-14", *got.User.LastAchievedDate)
	assert.Equal(t, 0, got.User.DaysOffLeft)
	assert.Equal(t, []MoveDTO{{TaskID: 5, From: "2026-10-16", To: "2026-10-18"}}, got.Moves)
}
