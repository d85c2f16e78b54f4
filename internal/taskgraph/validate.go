package taskgraph

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
)

// Error categories. Every consistency error wraps exactly one of these.
var (
	ErrInvalidDates = errors.New("inconsistent task dates")
	ErrXPBudget     = errors.New("xp budget exceeded")
)

// Consistency errors in check order.
var (
	ErrDueDateAfterDeadline      = fmt.Errorf("%w: due date after deadline", ErrInvalidDates)
	ErrDueDateAfterParentDueDate = fmt.Errorf("%w: due date after parent's due date", ErrInvalidDates)
	ErrDeadlineAfterParent       = fmt.Errorf("%w: deadline after parent's deadline", ErrInvalidDates)
	ErrSubtaskXPExceedsParent    = fmt.Errorf("%w: subtask xp exceeds parent budget", ErrXPBudget)
	ErrTaskXPBelowSubtasks       = fmt.Errorf("%w: task xp smaller than combined subtask xp", ErrXPBudget)
)

// ParentFields summarizes the parent of the task being validated.
type ParentFields struct {
	DueDate     *time.Time
	Deadline    *time.Time
	RemainingXP int
	// SubtaskXP holds the remaining XP of every current subtask of the parent,
	// including the task being validated.
	SubtaskXP []int
}

// Fields is the normalized input to Validate. Creation and update both build one.
type Fields struct {
	DueDate     *time.Time
	Deadline    *time.Time
	RemainingXP int
	Parent      *ParentFields
	SubtaskXP   []int
}

// Validate checks date ordering and XP budgets. The first failing check wins.
func Validate(f Fields) error {
	if f.DueDate != nil && f.Deadline != nil && calendar.After(*f.DueDate, *f.Deadline) {
		return ErrDueDateAfterDeadline
	}

	if p := f.Parent; p != nil {
		if f.DueDate != nil && p.DueDate != nil && calendar.After(*f.DueDate, *p.DueDate) {
			return ErrDueDateAfterParentDueDate
		}
		if f.Deadline != nil && p.Deadline != nil && calendar.After(*f.Deadline, *p.Deadline) {
			return ErrDeadlineAfterParent
		}
		if sum(p.SubtaskXP) > p.RemainingXP {
			return ErrSubtaskXPExceedsParent
		}
	}

	if len(f.SubtaskXP) > 0 && sum(f.SubtaskXP) > f.RemainingXP {
		return ErrTaskXPBelowSubtasks
	}

	return nil
}

// Fields builds the validation input for id from the current graph state.
func (g *Graph) Fields(id uint64) (Fields, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Fields{}, ErrNodeNotFound
	}

	deadline := n.Deadline
	f := Fields{
		DueDate:     n.DueDate,
		Deadline:    &deadline,
		RemainingXP: n.RemainingXP,
		SubtaskXP:   xpOf(g.Subtasks(id)),
	}

	if parent, ok := g.Parent(id); ok {
		parentDeadline := parent.Deadline
		f.Parent = &ParentFields{
			DueDate:     parent.DueDate,
			Deadline:    &parentDeadline,
			RemainingXP: parent.RemainingXP,
			SubtaskXP:   xpOf(g.Subtasks(parent.ID)),
		}
	}

	return f, nil
}

// ValidateNode runs Validate against the graph state of id.
func (g *Graph) ValidateNode(id uint64) error {
	f, err := g.Fields(id)
	if err != nil {
		return err
	}
	return Validate(f)
}

func xpOf(nodes []*Node) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.RemainingXP)
	}
	return out
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
