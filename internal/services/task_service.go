package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/constants"
	"github.com/yukikurage/xp-task-api/internal/lock"
	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/progress"
	"github.com/yukikurage/xp-task-api/internal/repository"
	"github.com/yukikurage/xp-task-api/internal/taskgraph"
	"github.com/yukikurage/xp-task-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrParentNotFound   = errors.New("parent task not found")
	ErrPriorityNotFound = errors.New("priority not found")
	ErrTaskAlreadyDone  = errors.New("task is already done")
	ErrInvalidTask      = errors.New("invalid task")
)

// newTaskID is the graph id of a task that has not been inserted yet.
const newTaskID uint64 = 0

// TaskService handles task business logic
type TaskService struct {
	store  repository.Store
	locker lock.Locker
	clock  calendar.Clock
	engine *progress.Engine
}

// NewTaskService creates a new TaskService
func NewTaskService(store repository.Store, locker lock.Locker, clock calendar.Clock) *TaskService {
	return &TaskService{
		store:  store,
		locker: locker,
		clock:  clock,
		engine: progress.NewEngine(clock),
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID     uint64
	Done       *bool
	RootsOnly  bool
	Pagination utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID      uint64
	Name        string
	Description string
	DueDate     *time.Time
	Deadline    time.Time
	PriorityID  uint64
	ParentID    *uint64
}

// UpdateTaskInput replaces a task's fields. A nil ParentID keeps the current parent.
type UpdateTaskInput struct {
	Name        string
	Description string
	DueDate     *time.Time
	Deadline    time.Time
	PriorityID  uint64
	ParentID    *uint64
}

// ListTasks returns one page of the user's tasks, most urgent deadline first
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.store.Tasks().List(repository.TaskFilter{
		UserID:     input.UserID,
		Done:       input.Done,
		RootsOnly:  input.RootsOnly,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task owned by userID with its priority and subtasks
func (s *TaskService) GetTask(userID, taskID uint64) (*models.Task, error) {
	return ownedTask(s.store, userID, taskID)
}

func ownedTask(store repository.Store, userID, taskID uint64) (*models.Task, error) {
	task, err := store.Tasks().FindByID(taskID, "Priority", "Subtasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task.UserID != userID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// CreateTask validates and inserts a task. Its XP is copied from the priority.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	today := s.clock.Today()
	name, err := checkText(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	due := truncatePtr(input.DueDate)
	deadline := calendar.Truncate(input.Deadline)
	if err := notInPast(due, today, "due date"); err != nil {
		return nil, err
	}
	if err := notInPast(&deadline, today, "deadline"); err != nil {
		return nil, err
	}

	var created *models.Task
	err = mutate(ctx, s.store, s.locker, input.UserID, func(w *workspace) error {
		priority, err := findPriority(w.store, input.PriorityID)
		if err != nil {
			return err
		}

		w.graph.Add(taskgraph.Node{ID: newTaskID, DueDate: due, Deadline: deadline, RemainingXP: priority.XP})
		if input.ParentID != nil {
			if err := attach(w, *input.ParentID, newTaskID); err != nil {
				return err
			}
		}
		if err := w.graph.ValidateNode(newTaskID); err != nil {
			return err
		}

		task := &models.Task{
			UserID:      input.UserID,
			ParentID:    input.ParentID,
			PriorityID:  priority.ID,
			Name:        name,
			Description: strings.TrimSpace(input.Description),
			DueDate:     due,
			Deadline:    deadline,
			RemainingXP: priority.XP,
		}
		if err := w.store.Tasks().Create(task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		created, err = w.store.Tasks().FindByID(task.ID, "Priority")
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask replaces a task's fields and re-validates it together with its
// subtasks. Changing the priority keeps the XP already consumed by finished
// subtasks.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	today := s.clock.Today()
	name, err := checkText(input.Name, input.Description)
	if err != nil {
		return nil, err
	}
	due := truncatePtr(input.DueDate)
	deadline := calendar.Truncate(input.Deadline)

	var updated *models.Task
	err = mutate(ctx, s.store, s.locker, userID, func(w *workspace) error {
		task, node, err := w.task(taskID)
		if err != nil {
			return err
		}

		// Unchanged dates may already lie in the past.
		if !calendar.EqualPtr(due, task.DueDate) {
			if err := notInPast(due, today, "due date"); err != nil {
				return err
			}
		}
		if !calendar.Equal(deadline, task.Deadline) {
			if err := notInPast(&deadline, today, "deadline"); err != nil {
				return err
			}
		}

		if input.PriorityID != task.PriorityID {
			xp, err := s.rederiveXP(w, task, input.PriorityID)
			if err != nil {
				return err
			}
			if !node.Done {
				node.RemainingXP = xp
			}
			task.PriorityID = input.PriorityID
		}

		node.DueDate = due
		node.Deadline = deadline
		if input.ParentID != nil && (node.ParentID == nil || *node.ParentID != *input.ParentID) {
			if err := attach(w, *input.ParentID, taskID); err != nil {
				return err
			}
		}

		if err := w.graph.ValidateNode(taskID); err != nil {
			return err
		}
		for _, sub := range w.graph.Subtasks(taskID) {
			if err := w.graph.ValidateNode(sub.ID); err != nil {
				return fmt.Errorf("subtask %d: %w", sub.ID, err)
			}
		}

		task.Name = name
		task.Description = strings.TrimSpace(input.Description)
		if err := w.flush(taskID); err != nil {
			return err
		}

		updated, err = w.store.Tasks().FindByID(taskID, "Priority", "Subtasks")
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CompleteTask marks a task done. Pending subtasks are completed first, so
// every task's XP is credited exactly once.
func (s *TaskService) CompleteTask(ctx context.Context, userID, taskID uint64) (*models.Task, error) {
	var completed *models.Task
	err := mutate(ctx, s.store, s.locker, userID, func(w *workspace) error {
		_, node, err := w.task(taskID)
		if err != nil {
			return err
		}
		if node.Done {
			return ErrTaskAlreadyDone
		}

		touched := w.complete(taskID, s.engine)
		if err := w.store.Users().Save(w.user); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		if err := w.flush(touched...); err != nil {
			return err
		}

		completed, err = w.store.Tasks().FindByID(taskID, "Priority", "Subtasks")
		return err
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// DeleteTask removes a task and, transitively, its subtasks
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint64) error {
	return mutate(ctx, s.store, s.locker, userID, func(w *workspace) error {
		if _, _, err := w.task(taskID); err != nil {
			return err
		}

		removed := w.graph.Remove(taskID)
		if err := w.store.Tasks().Delete(removed); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	})
}

// rederiveXP returns the remaining XP of task under a new priority, keeping
// whatever its completed subtasks already consumed.
func (s *TaskService) rederiveXP(w *workspace, task *models.Task, priorityID uint64) (int, error) {
	next, err := findPriority(w.store, priorityID)
	if err != nil {
		return 0, err
	}

	consumed := 0
	if current, err := w.store.Priorities().FindByID(task.PriorityID); err == nil {
		consumed = max(current.XP-task.RemainingXP, 0)
	}
	return max(next.XP-consumed, 0), nil
}

func attach(w *workspace, parentID, childID uint64) error {
	if _, ok := w.tasks[parentID]; !ok {
		return ErrParentNotFound
	}
	if err := w.graph.Attach(parentID, childID); err != nil {
		if errors.Is(err, taskgraph.ErrCycle) {
			return fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		return err
	}
	return nil
}

func findPriority(store repository.Store, id uint64) (*models.Priority, error) {
	priority, err := store.Priorities().FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriorityNotFound
		}
		return nil, fmt.Errorf("failed to find priority: %w", err)
	}
	return priority, nil
}

// checkText validates name and description and returns the trimmed name.
func checkText(name, description string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < constants.MinTaskNameLength || n > constants.MaxTaskNameLength {
		return "", fmt.Errorf("%w: name must be %d-%d characters", ErrInvalidTask, constants.MinTaskNameLength, constants.MaxTaskNameLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(description)) > constants.MaxDescriptionLength {
		return "", fmt.Errorf("%w: description must be at most %d characters", ErrInvalidTask, constants.MaxDescriptionLength)
	}
	return name, nil
}

func notInPast(d *time.Time, today time.Time, field string) error {
	if d != nil && calendar.Before(*d, today) {
		return fmt.Errorf("%w: %s must not be in the past", ErrInvalidTask, field)
	}
	return nil
}

func truncatePtr(d *time.Time) *time.Time {
	if d == nil {
		return nil
	}
	t := calendar.Truncate(*d)
	return &t
}
