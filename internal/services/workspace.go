package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/xp-task-api/internal/lock"
	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/progress"
	"github.com/yukikurage/xp-task-api/internal/repository"
	"github.com/yukikurage/xp-task-api/internal/taskgraph"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// workspace is one user's aggregate loaded inside a transaction: the user,
// every task they own and the task graph built from them.
type workspace struct {
	store repository.Store
	user  *models.User
	tasks map[uint64]*models.Task
	graph *taskgraph.Graph
}

// mutate runs fn on the user's aggregate while holding the user's lock, inside
// a single transaction. Any error rolls back every write fn made.
func mutate(ctx context.Context, store repository.Store, locker lock.Locker, userID uint64, fn func(w *workspace) error) error {
	unlock, err := locker.Lock(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock user %d: %w", userID, err)
	}
	defer unlock()

	return store.Transaction(func(tx repository.Store) error {
		w, err := loadWorkspace(tx, userID)
		if err != nil {
			return err
		}
		return fn(w)
	})
}

func loadWorkspace(store repository.Store, userID uint64) (*workspace, error) {
	user, err := store.Users().FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	tasks, err := store.Tasks().FindAllByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	w := &workspace{
		store: store,
		user:  user,
		tasks: make(map[uint64]*models.Task, len(tasks)),
		graph: taskgraph.New(),
	}
	for i := range tasks {
		t := &tasks[i]
		w.tasks[t.ID] = t
		w.graph.Add(nodeOf(t))
	}
	for _, t := range tasks {
		if t.ParentID == nil {
			continue
		}
		if _, ok := w.tasks[*t.ParentID]; !ok {
			continue
		}
		if err := w.graph.Attach(*t.ParentID, t.ID); err != nil {
			return nil, fmt.Errorf("task %d of user %d: %w", t.ID, userID, err)
		}
	}

	return w, nil
}

func nodeOf(t *models.Task) taskgraph.Node {
	return taskgraph.Node{
		ID:          t.ID,
		DueDate:     t.DueDate,
		Deadline:    t.Deadline,
		RemainingXP: t.RemainingXP,
		Done:        t.Done,
	}
}

// task returns a task the user owns together with its graph node.
func (w *workspace) task(id uint64) (*models.Task, *taskgraph.Node, error) {
	t, ok := w.tasks[id]
	if !ok {
		return nil, nil, ErrTaskNotFound
	}
	n, ok := w.graph.Get(id)
	if !ok {
		return nil, nil, ErrTaskNotFound
	}
	return t, n, nil
}

// complete marks id done after its pending subtasks, crediting each one's
// remaining XP to the user and consuming it from the parent's budget.
// It returns the ids of every task it touched.
func (w *workspace) complete(id uint64, engine *progress.Engine) []uint64 {
	var touched []uint64
	for _, sub := range w.graph.Subtasks(id) {
		if !sub.Done {
			touched = append(touched, w.complete(sub.ID, engine)...)
		}
	}

	n, ok := w.graph.Get(id)
	if !ok {
		return touched
	}
	xp := n.RemainingXP
	engine.HandleTaskCompletion(w.user, xp)
	n.Done = true
	n.RemainingXP = 0
	touched = append(touched, id)

	if parent, ok := w.graph.Parent(id); ok {
		parent.RemainingXP = max(parent.RemainingXP-xp, 0)
		touched = append(touched, parent.ID)
	}
	return touched
}

// flush writes the graph state of the given tasks back to the store.
func (w *workspace) flush(ids ...uint64) error {
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		t, n, err := w.task(id)
		if err != nil {
			return err
		}
		t.DueDate = n.DueDate
		t.Deadline = n.Deadline
		t.RemainingXP = n.RemainingXP
		t.Done = n.Done
		t.ParentID = n.ParentID

		if err := w.store.Tasks().Update(t); err != nil {
			return fmt.Errorf("failed to save task %d: %w", id, err)
		}
	}
	return nil
}

// saveUser writes the user's columns and days off.
func (w *workspace) saveUser() error {
	if err := w.store.Users().Save(w.user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if err := w.store.Users().ReplaceDaysOff(w.user.ID, w.user.DaysOff); err != nil {
		return fmt.Errorf("failed to save days off: %w", err)
	}
	return nil
}
