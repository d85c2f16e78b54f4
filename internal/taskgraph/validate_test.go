package taskgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		wantErr error
	}{
		{
			name:   "no dates and no parent",
			fields: Fields{RemainingXP: 10},
		},
		{
			name:    "due date after deadline",
			fields:  Fields{DueDate: ptr(day(2)), Deadline: ptr(day(1))},
			wantErr: ErrDueDateAfterDeadline,
		},
		{
			name:   "due date equal to deadline",
			fields: Fields{DueDate: ptr(day(1)), Deadline: ptr(day(1))},
		},
		{
			name: "due date after parent due date",
			fields: Fields{
				DueDate:  ptr(day(3)),
				Deadline: ptr(day(4)),
				Parent:   &ParentFields{DueDate: ptr(day(2)), Deadline: ptr(day(5)), RemainingXP: 10},
			},
			wantErr: ErrDueDateAfterParentDueDate,
		},
		{
			name: "parent without due date skips due date check",
			fields: Fields{
				DueDate:  ptr(day(3)),
				Deadline: ptr(day(4)),
				Parent:   &ParentFields{Deadline: ptr(day(5)), RemainingXP: 10},
			},
		},
		{
			name: "deadline after parent deadline",
			fields: Fields{
				Deadline: ptr(day(6)),
				Parent:   &ParentFields{Deadline: ptr(day(5)), RemainingXP: 10},
			},
			wantErr: ErrDeadlineAfterParent,
		},
		{
			name: "subtask xp exceeds parent budget",
			fields: Fields{
				Deadline:    ptr(day(1)),
				RemainingXP: 8,
				Parent:      &ParentFields{Deadline: ptr(day(5)), RemainingXP: 5, SubtaskXP: []int{8}},
			},
			wantErr: ErrSubtaskXPExceedsParent,
		},
		{
			name: "siblings fill parent budget exactly",
			fields: Fields{
				Deadline:    ptr(day(1)),
				RemainingXP: 5,
				Parent:      &ParentFields{Deadline: ptr(day(5)), RemainingXP: 10, SubtaskXP: []int{5, 5}},
			},
		},
		{
			name:    "own subtasks exceed task xp",
			fields:  Fields{Deadline: ptr(day(1)), RemainingXP: 5, SubtaskXP: []int{3, 3}},
			wantErr: ErrTaskXPBelowSubtasks,
		},
		{
			name: "date error wins over budget error",
			fields: Fields{
				DueDate:     ptr(day(3)),
				Deadline:    ptr(day(2)),
				RemainingXP: 1,
				SubtaskXP:   []int{50},
			},
			wantErr: ErrDueDateAfterDeadline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.fields)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateErrorCategories(t *testing.T) {
	assert.ErrorIs(t, ErrDueDateAfterDeadline, ErrInvalidDates)
	assert.ErrorIs(t, ErrDueDateAfterParentDueDate, ErrInvalidDates)
	assert.ErrorIs(t, ErrDeadlineAfterParent, ErrInvalidDates)
	assert.ErrorIs(t, ErrSubtaskXPExceedsParent, ErrXPBudget)
	assert.ErrorIs(t, ErrTaskXPBelowSubtasks, ErrXPBudget)
	assert.NotErrorIs(t, ErrSubtaskXPExceedsParent, ErrInvalidDates)
}

func TestGraphFields(t *testing.T) {
	g := newTestGraph(t)

	f, err := g.Fields(2)
	require.NoError(t, err)
	require.NotNil(t, f.Parent)
	assert.Equal(t, 20, f.Parent.RemainingXP)
	assert.Equal(t, []int{5, 5}, f.Parent.SubtaskXP)
	assert.Equal(t, []int{1}, f.SubtaskXP)
	assert.NoError(t, g.ValidateNode(2))

	n, _ := g.Get(3)
	n.RemainingXP = 16
	assert.ErrorIs(t, g.ValidateNode(3), ErrSubtaskXPExceedsParent)

	_, err = g.Fields(42)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}
