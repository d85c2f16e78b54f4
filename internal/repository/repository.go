package repository

import (
	"time"

	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/utils"
	"gorm.io/gorm"
)

// Store groups the repositories that take part in one unit of work.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Priorities() PriorityRepository

	// Transaction runs fn with a Store bound to a single database transaction.
	// Returning an error from fn rolls everything back.
	Transaction(fn func(tx Store) error) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// FindAllByUser returns every task of a user in creation order
	FindAllByUser(userID uint64) ([]models.Task, error)

	// Update writes the task's own columns
	Update(task *models.Task) error

	// Delete soft deletes the given tasks
	Delete(ids []uint64) error

	// FindPastDeadline returns pending tasks whose deadline is before day
	FindPastDeadline(day time.Time) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID     uint64
	Done       *bool
	RootsOnly  bool
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with days off loaded
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Save writes the user's own columns
	Save(user *models.User) error

	// ReplaceDaysOff stores exactly the given days off for a user
	ReplaceDaysOff(userID uint64, daysOff []models.DayOff) error

	// FindUsersWithQuotaMet returns users whose XP reached their quota and who
	// have not been credited for day yet
	FindUsersWithQuotaMet(day time.Time) ([]models.User, error)

	// FindUsersWhoMissedQuota returns users with a running streak who were
	// neither credited for day nor off on it
	FindUsersWhoMissedQuota(day time.Time) ([]models.User, error)

	// FindAllIDs lists the ids of every user
	FindAllIDs() ([]uint64, error)
}

// PriorityRepository defines the interface for priority lookups
type PriorityRepository interface {
	// FindByID finds a priority by ID
	FindByID(id uint64) (*models.Priority, error)

	// List returns all priorities ordered by XP
	List() ([]models.Priority, error)
}

// GormStore is a GORM implementation of Store
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a new Store
func NewStore(db *gorm.DB) Store {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *GormStore) Tasks() TaskRepository {
	return NewTaskRepository(s.db)
}

func (s *GormStore) Priorities() PriorityRepository {
	return NewPriorityRepository(s.db)
}

func (s *GormStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
