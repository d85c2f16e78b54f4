package repository

import (
	"github.com/yukikurage/xp-task-api/internal/models"
	"gorm.io/gorm"
)

// GormPriorityRepository is a GORM implementation of PriorityRepository
type GormPriorityRepository struct {
	db *gorm.DB
}

// NewPriorityRepository creates a new PriorityRepository
func NewPriorityRepository(db *gorm.DB) PriorityRepository {
	return &GormPriorityRepository{db: db}
}

// FindByID finds a priority by ID
func (r *GormPriorityRepository) FindByID(id uint64) (*models.Priority, error) {
	var priority models.Priority
	if err := r.db.First(&priority, id).Error; err != nil {
		return nil, err
	}
	return &priority, nil
}

// List returns all priorities ordered by XP
func (r *GormPriorityRepository) List() ([]models.Priority, error) {
	var priorities []models.Priority
	if err := r.db.Order("xp ASC").Find(&priorities).Error; err != nil {
		return nil, err
	}
	return priorities, nil
}
