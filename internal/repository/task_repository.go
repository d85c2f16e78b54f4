package repository

import (
	"time"

	"github.com/yukikurage/xp-task-api/internal/database"
	"github.com/yukikurage/xp-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{}).Where("tasks.user_id = ?", filter.UserID)

	// Apply filters
	if filter.Done != nil {
		query = query.Where("tasks.done = ?", *filter.Done)
	}
	if filter.RootsOnly {
		query = query.Where("tasks.parent_id IS NULL")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.
		Order("tasks.deadline ASC").
		Order("tasks.id ASC").
		Scopes(database.Paginate(filter.Pagination))

	if err := listQuery.Preload("Priority").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// FindAllByUser returns every task of a user in creation order
func (r *GormTaskRepository) FindAllByUser(userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update writes the task's own columns
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// Delete soft deletes the given tasks
func (r *GormTaskRepository) Delete(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&models.Task{}).Error
	})
}

// FindPastDeadline returns pending tasks whose deadline is before day
func (r *GormTaskRepository) FindPastDeadline(day time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.
		Where("done = ? AND deadline < ?", false, day).
		Order("user_id ASC").Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
