package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	subtasks []GeneratedSubtask
	err      error
	prompt   SubtaskPrompt
}

func (f *fakeGenerator) GenerateSubtasks(_ context.Context, p SubtaskPrompt) ([]GeneratedSubtask, error) {
	f.prompt = p
	return f.subtasks, f.err
}

func (suite *ServiceTestSuite) TestSuggestSubtasks_KeepsWhatFitsTheBudget() {
	parent := suite.createTask(CreateTaskInput{Name: "launch site", PriorityID: priorityHigh})
	suite.createTask(CreateTaskInput{Name: "buy domain", PriorityID: priorityLow, ParentID: &parent.ID})

	gen := &fakeGenerator{subtasks: []GeneratedSubtask{
		{Name: "write copy", Description: "landing page text", Priority: "low"},
		{Name: "pick colors", Priority: "URGENT"},
		{Name: "build backend", Priority: "HIGH"},
		{Name: "ok", Priority: "LOW"},
		{Name: "set up hosting", Priority: "medium"},
		{Name: "announce", Priority: "LOW"},
	}}
	service := NewSuggestionService(suite.store, gen, suite.clock)

	suggestions, err := service.SuggestSubtasks(suite.ctx, suite.user.ID, parent.ID)
	suite.Require().NoError(err)

	// 20 XP minus the pending 5 XP subtask leaves 15.
	suite.Equal(15, gen.prompt.BudgetXP)
	suite.Equal("launch site", gen.prompt.Name)
	suite.Equal("2026-10-15", gen.prompt.Today)
	suite.Len(gen.prompt.Priorities, 4)

	suite.Require().Len(suggestions, 2)
	suite.Equal("write copy", suggestions[0].Name)
	suite.Equal(priorityLow, suggestions[0].PriorityID)
	suite.Equal(5, suggestions[0].XP)
	suite.Equal("set up hosting", suggestions[1].Name)
	suite.Equal("MEDIUM", suggestions[1].Priority)

	all, err := suite.store.Tasks().FindAllByUser(suite.user.ID)
	suite.Require().NoError(err)
	suite.Len(all, 2)
}

func (suite *ServiceTestSuite) TestSuggestSubtasks_Errors() {
	task := suite.createTask(CreateTaskInput{PriorityID: priorityLow})

	_, err := NewSuggestionService(suite.store, nil, suite.clock).SuggestSubtasks(suite.ctx, suite.user.ID, task.ID)
	suite.ErrorIs(err, ErrAIServiceNotConfigured)

	gen := &fakeGenerator{subtasks: []GeneratedSubtask{{Name: "too large", Priority: "CRITICAL"}}}
	service := NewSuggestionService(suite.store, gen, suite.clock)

	_, err = service.SuggestSubtasks(suite.ctx, suite.user.ID, task.ID)
	suite.ErrorIs(err, ErrAINoValidTasks)

	_, err = service.SuggestSubtasks(suite.ctx, suite.user.ID+100, task.ID)
	suite.ErrorIs(err, ErrTaskNotFound)

	gen.err = errors.New("upstream down")
	_, err = service.SuggestSubtasks(suite.ctx, suite.user.ID, task.ID)
	suite.EqualError(err, "upstream down")
}

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   openai.GPT4o,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func newTestAIService(t *testing.T, content string, gotPrompt *string) *AIService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req openai.ChatCompletionRequest
		require.NoError(t, json.Unmarshal(body, &req))
		if gotPrompt != nil && len(req.Messages) > 0 {
			*gotPrompt = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(content))
	}))
	t.Cleanup(server.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestAIService_GenerateSubtasks(t *testing.T) {
	var prompt string
	service := newTestAIService(t, `{"subtasks":[{"name":"draft outline","description":"headings only","priority":"LOW"}]}`, &prompt)

	subtasks, err := service.GenerateSubtasks(context.Background(), SubtaskPrompt{
		Today:       "2026-10-15",
		Name:        "write thesis",
		Deadline:    "2026-10-20",
		BudgetXP:    20,
		Priorities:  []PriorityOption{{Name: "LOW", XP: 5}},
		MaxSubtasks: 3,
	})
	require.NoError(t, err)

	require.Len(t, subtasks, 1)
	assert.Equal(t, GeneratedSubtask{Name: "draft outline", Description: "headings only", Priority: "LOW"}, subtasks[0])
	assert.True(t, strings.Contains(prompt, "write thesis"))
	assert.True(t, strings.Contains(prompt, "LOW (5 XP)"))
	assert.True(t, strings.Contains(prompt, "XP budget: 20"))
}

func TestAIService_GenerateSubtasks_BadJSON(t *testing.T) {
	service := newTestAIService(t, "not json", nil)

	_, err := service.GenerateSubtasks(context.Background(), SubtaskPrompt{Name: "anything"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse AI response")
}
