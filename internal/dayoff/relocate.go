// Package dayoff decides whether a user may take or return a day off, and
// pushes pending due dates off the declared days.
package dayoff

import (
	"sort"
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/taskgraph"
)

// Move is one due date change made by Relocate.
type Move struct {
	TaskID uint64
	From   time.Time
	To     time.Time
}

// NextAvailable returns from, or the first later date that is not a day off.
func NextAvailable(daysOff calendar.Set, from time.Time) time.Time {
	d := calendar.Truncate(from)
	for daysOff.Contains(d) {
		d = calendar.AddDays(d, 1)
	}
	return d
}

// Relocate moves pending due dates forward past days off. Root tasks are handled
// most urgent deadline first; every subtask is then placed no later than its
// parent's due date. A move that would pass the task's own deadline, or its
// parent's due date, is skipped. Only real changes are returned, so a second
// call on the same state returns nothing.
func Relocate(g *taskgraph.Graph, daysOff calendar.Set, today time.Time) []Move {
	r := relocator{graph: g, daysOff: daysOff, offToday: daysOff.Contains(today)}
	for _, root := range byDeadline(g.Roots()) {
		r.visit(root, nil)
	}
	return r.moves
}

type relocator struct {
	graph    *taskgraph.Graph
	daysOff  calendar.Set
	offToday bool
	moves    []Move
}

func (r *relocator) visit(n *taskgraph.Node, limit *time.Time) {
	if r.isCandidate(n) {
		r.move(n, limit)
	}
	for _, sub := range byDeadline(r.graph.Subtasks(n.ID)) {
		r.visit(sub, n.DueDate)
	}
}

func (r *relocator) isCandidate(n *taskgraph.Node) bool {
	if n.Done || n.DueDate == nil {
		return false
	}
	return r.offToday || r.daysOff.Contains(*n.DueDate)
}

func (r *relocator) move(n *taskgraph.Node, limit *time.Time) {
	from := calendar.Truncate(*n.DueDate)
	to := NextAvailable(r.daysOff, from)
	if calendar.Equal(from, to) || calendar.After(to, n.Deadline) {
		return
	}
	if limit != nil && calendar.After(to, *limit) {
		return
	}
	n.DueDate = &to
	r.moves = append(r.moves, Move{TaskID: n.ID, From: from, To: to})
}

func byDeadline(nodes []*taskgraph.Node) []*taskgraph.Node {
	sorted := append([]*taskgraph.Node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return calendar.Before(sorted[i].Deadline, sorted[j].Deadline)
	})
	return sorted
}
