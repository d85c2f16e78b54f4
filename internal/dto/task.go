package dto

import (
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/services"
	"github.com/yukikurage/xp-task-api/internal/utils"
)

// PriorityDTO represents a priority in API responses
type PriorityDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	XP   int    `json:"xp"`
}

// SubtaskDTO is the short form of a task nested in its parent
type SubtaskDTO struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	DueDate     *string `json:"due_date"`
	Deadline    string  `json:"deadline"`
	RemainingXP int     `json:"remaining_xp"`
	Done        bool    `json:"done"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64       `json:"id"`
	ParentID    *uint64      `json:"parent_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DueDate     *string      `json:"due_date"`
	Deadline    string       `json:"deadline"`
	RemainingXP int          `json:"remaining_xp"`
	Done        bool         `json:"done"`
	Priority    *PriorityDTO `json:"priority,omitempty"`
	Subtasks    []SubtaskDTO `json:"subtasks,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// SuggestionDTO is one AI-proposed subtask
type SuggestionDTO struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Priority    PriorityDTO `json:"priority"`
}

// Conversion functions

// ToPriorityDTO converts a Priority model to PriorityDTO
func ToPriorityDTO(p models.Priority) PriorityDTO {
	return PriorityDTO{
		ID:   p.ID,
		Name: p.Name,
		XP:   p.XP,
	}
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		ParentID:    task.ParentID,
		Name:        task.Name,
		Description: task.Description,
		DueDate:     calendar.FormatPtr(task.DueDate),
		Deadline:    calendar.Format(task.Deadline),
		RemainingXP: task.RemainingXP,
		Done:        task.Done,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include priority if preloaded
	if task.Priority.ID != 0 {
		priority := ToPriorityDTO(task.Priority)
		dto.Priority = &priority
	}

	// Include subtasks if preloaded
	if len(task.Subtasks) > 0 {
		dto.Subtasks = make([]SubtaskDTO, len(task.Subtasks))
		for i, sub := range task.Subtasks {
			dto.Subtasks[i] = SubtaskDTO{
				ID:          sub.ID,
				Name:        sub.Name,
				DueDate:     calendar.FormatPtr(sub.DueDate),
				Deadline:    calendar.Format(sub.Deadline),
				RemainingXP: sub.RemainingXP,
				Done:        sub.Done,
			}
		}
	}

	return dto
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

// ToSuggestionDTOs converts suggested subtasks for the response body
func ToSuggestionDTOs(suggestions []services.SubtaskSuggestion) []SuggestionDTO {
	out := make([]SuggestionDTO, len(suggestions))
	for i, s := range suggestions {
		out[i] = SuggestionDTO{
			Name:        s.Name,
			Description: s.Description,
			Priority:    PriorityDTO{ID: s.PriorityID, Name: s.Priority, XP: s.XP},
		}
	}
	return out
}
