package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/xp-task-api/internal/calendar"
	"github.com/yukikurage/xp-task-api/internal/constants"
	"github.com/yukikurage/xp-task-api/internal/repository"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoValidTasks         = errors.New("AI returned no usable subtasks")
)

// SubtaskSuggestion is a proposed subtask that fits the parent's budget.
// Nothing is persisted; the client creates the ones it keeps.
type SubtaskSuggestion struct {
	Name        string
	Description string
	PriorityID  uint64
	Priority    string
	XP          int
}

// SuggestionService turns a task into suggested subtasks.
type SuggestionService struct {
	store     repository.Store
	generator SubtaskGenerator
	clock     calendar.Clock
}

// NewSuggestionService creates the service. A nil generator disables it.
func NewSuggestionService(store repository.Store, generator SubtaskGenerator, clock calendar.Clock) *SuggestionService {
	return &SuggestionService{
		store:     store,
		generator: generator,
		clock:     clock,
	}
}

// SuggestSubtasks asks the generator for subtasks of taskID and keeps those
// with a known priority while their XP still fits the task's free budget.
func (s *SuggestionService) SuggestSubtasks(ctx context.Context, userID, taskID uint64) ([]SubtaskSuggestion, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	task, err := ownedTask(s.store, userID, taskID)
	if err != nil {
		return nil, err
	}
	if task.Done {
		return nil, ErrTaskAlreadyDone
	}

	budget := task.RemainingXP
	for _, sub := range task.Subtasks {
		if !sub.Done {
			budget -= sub.RemainingXP
		}
	}
	if budget <= 0 {
		return nil, ErrAINoValidTasks
	}

	priorities, err := s.store.Priorities().List()
	if err != nil {
		return nil, fmt.Errorf("failed to list priorities: %w", err)
	}
	byName := make(map[string]int, len(priorities))
	options := make([]PriorityOption, len(priorities))
	for i, p := range priorities {
		byName[strings.ToUpper(p.Name)] = i
		options[i] = PriorityOption{Name: p.Name, XP: p.XP}
	}

	generated, err := s.generator.GenerateSubtasks(ctx, SubtaskPrompt{
		Today:       calendar.Format(s.clock.Today()),
		Name:        task.Name,
		Description: task.Description,
		Deadline:    calendar.Format(task.Deadline),
		BudgetXP:    budget,
		Priorities:  options,
		MaxSubtasks: constants.MaxAIGeneratedTasks,
	})
	if err != nil {
		return nil, err
	}

	var out []SubtaskSuggestion
	for _, g := range generated {
		if len(out) == constants.MaxAIGeneratedTasks {
			break
		}
		name := strings.TrimSpace(g.Name)
		if n := utf8.RuneCountInString(name); n < constants.MinTaskNameLength || n > constants.MaxTaskNameLength {
			continue
		}
		idx, ok := byName[strings.ToUpper(strings.TrimSpace(g.Priority))]
		if !ok {
			continue
		}
		p := priorities[idx]
		if p.XP > budget {
			continue
		}

		description := strings.TrimSpace(g.Description)
		if utf8.RuneCountInString(description) > constants.MaxDescriptionLength {
			description = string([]rune(description)[:constants.MaxDescriptionLength])
		}

		budget -= p.XP
		out = append(out, SubtaskSuggestion{
			Name:        name,
			Description: description,
			PriorityID:  p.ID,
			Priority:    p.Name,
			XP:          p.XP,
		})
	}

	if len(out) == 0 {
		return nil, ErrAINoValidTasks
	}
	return out, nil
}
