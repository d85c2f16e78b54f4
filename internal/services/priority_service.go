package services

import (
	"fmt"

	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/repository"
)

// PriorityService exposes the priority lookup table.
type PriorityService struct {
	priorityRepo repository.PriorityRepository
}

func NewPriorityService(priorityRepo repository.PriorityRepository) *PriorityService {
	return &PriorityService{priorityRepo: priorityRepo}
}

// ListPriorities returns every priority ordered by XP.
func (s *PriorityService) ListPriorities() ([]models.Priority, error) {
	priorities, err := s.priorityRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	return priorities, nil
}
