package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// SubtaskPrompt describes the task to break down.
type SubtaskPrompt struct {
	Today       string
	Name        string
	Description string
	Deadline    string
	BudgetXP    int
	Priorities  []PriorityOption
	MaxSubtasks int
}

// PriorityOption is one priority the model may pick from.
type PriorityOption struct {
	Name string
	XP   int
}

// GeneratedSubtask is one subtask as proposed by the model.
type GeneratedSubtask struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// SubtaskGenerator proposes subtasks for a task.
type SubtaskGenerator interface {
	GenerateSubtasks(ctx context.Context, prompt SubtaskPrompt) ([]GeneratedSubtask, error)
}

type AIService struct {
	client *openai.Client
	model  string
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

// NewAIServiceWithConfig builds the service from a client config, e.g. to
// point it at another base URL.
func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
	}
}

// GenerateSubtasks asks OpenAI GPT to split a task into smaller steps
func (s *AIService) GenerateSubtasks(ctx context.Context, p SubtaskPrompt) ([]GeneratedSubtask, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	options := make([]string, len(p.Priorities))
	for i, o := range p.Priorities {
		options[i] = fmt.Sprintf("%s (%d XP)", o.Name, o.XP)
	}

	prompt := fmt.Sprintf(`You help break a task into smaller subtasks.

Today: %s
Task: %s
Description: %s
Deadline: %s
XP budget: %d

Each subtask needs a priority from this list: %s.
The XP of all subtasks together must not exceed the XP budget.
Propose at most %d subtasks.

Reply with JSON only, in this shape:
{"subtasks": [{"name": "short name", "description": "what to do", "priority": "one of the priority names"}]}
Return {"subtasks": []} when the task cannot be split.`,
		p.Today, p.Name, p.Description, p.Deadline,
		p.BudgetXP, strings.Join(options, ", "), p.MaxSubtasks)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var out struct {
		Subtasks []GeneratedSubtask `json:"subtasks"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return out.Subtasks, nil
}
