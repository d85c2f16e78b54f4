// Package taskgraph holds a user's tasks as an arena keyed by id, with
// parent/subtask links stored as ids on both sides.
package taskgraph

import (
	"errors"
	"time"
)

var (
	ErrNodeNotFound = errors.New("task not in graph")
	ErrCycle        = errors.New("task cannot become a subtask of itself or of its own subtask")
)

// Node is one task in the graph.
type Node struct {
	ID          uint64
	ParentID    *uint64
	SubtaskIDs  []uint64
	DueDate     *time.Time
	Deadline    time.Time
	RemainingXP int
	Done        bool
}

// Graph is an arena of task nodes. The zero value is not usable; call New.
type Graph struct {
	nodes map[uint64]*Node
	order []uint64
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[uint64]*Node)}
}

// Add inserts a node without linking it. ParentID and SubtaskIDs are ignored;
// use Attach afterwards so both sides stay in sync.
func (g *Graph) Add(n Node) *Node {
	node := n
	node.ParentID = nil
	node.SubtaskIDs = nil
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = &node
	return &node
}

// Get looks up a node by id.
func (g *Graph) Get(id uint64) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Roots returns nodes without a parent, in insertion order.
func (g *Graph) Roots() []*Node {
	var out []*Node
	for _, n := range g.Nodes() {
		if n.ParentID == nil {
			out = append(out, n)
		}
	}
	return out
}

// Parent returns the parent of id, if any.
func (g *Graph) Parent(id uint64) (*Node, bool) {
	n, ok := g.nodes[id]
	if !ok || n.ParentID == nil {
		return nil, false
	}
	return g.Get(*n.ParentID)
}

// Subtasks returns the direct subtasks of id in attachment order.
func (g *Graph) Subtasks(id uint64) []*Node {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Node, 0, len(n.SubtaskIDs))
	for _, sid := range n.SubtaskIDs {
		if s, ok := g.nodes[sid]; ok {
			out = append(out, s)
		}
	}
	return out
}

// Attach makes child a subtask of parent, detaching it from any previous parent.
func (g *Graph) Attach(parentID, childID uint64) error {
	parent, ok := g.nodes[parentID]
	if !ok {
		return ErrNodeNotFound
	}
	child, ok := g.nodes[childID]
	if !ok {
		return ErrNodeNotFound
	}
	if g.isDescendantOrSelf(parentID, childID) {
		return ErrCycle
	}
	if child.ParentID != nil && *child.ParentID == parentID {
		return nil
	}

	g.Detach(childID)
	parent.SubtaskIDs = append(parent.SubtaskIDs, childID)
	pid := parentID
	child.ParentID = &pid
	return nil
}

// Detach removes child from its parent's subtask list. No-op for roots.
func (g *Graph) Detach(childID uint64) {
	child, ok := g.nodes[childID]
	if !ok || child.ParentID == nil {
		return
	}
	if parent, ok := g.nodes[*child.ParentID]; ok {
		parent.SubtaskIDs = removeID(parent.SubtaskIDs, childID)
	}
	child.ParentID = nil
}

// Remove deletes id and all of its descendants, returning the removed ids with
// id first.
func (g *Graph) Remove(id uint64) []uint64 {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	g.Detach(id)

	removed := g.descendants(id)
	for _, rid := range removed {
		delete(g.nodes, rid)
		g.order = removeID(g.order, rid)
	}
	return removed
}

// descendants returns id followed by every node below it, depth first.
func (g *Graph) descendants(id uint64) []uint64 {
	out := []uint64{id}
	for _, s := range g.Subtasks(id) {
		out = append(out, g.descendants(s.ID)...)
	}
	return out
}

// isDescendantOrSelf reports whether candidate is root or lies below it.
func (g *Graph) isDescendantOrSelf(candidate, root uint64) bool {
	for _, id := range g.descendants(root) {
		if id == candidate {
			return true
		}
	}
	return false
}

func removeID(ids []uint64, id uint64) []uint64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
