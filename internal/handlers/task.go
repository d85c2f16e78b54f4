package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/xp-task-api/internal/dto"
	apierrors "github.com/yukikurage/xp-task-api/internal/errors"
	"github.com/yukikurage/xp-task-api/internal/middleware"
	"github.com/yukikurage/xp-task-api/internal/services"
	"github.com/yukikurage/xp-task-api/internal/utils"
)

type TaskHandler struct {
	taskService       *services.TaskService
	suggestionService *services.SuggestionService
}

func NewTaskHandler(taskService *services.TaskService, suggestionService *services.SuggestionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		suggestionService: suggestionService,
	}
}

// taskRequest is the body of both create and update
type taskRequest struct {
	Name        string  `json:"name" binding:"required,min=3,max=255"`
	Description string  `json:"description" binding:"max=500"`
	DueDate     *string `json:"due_date"`
	Deadline    string  `json:"deadline" binding:"required"`
	PriorityID  uint64  `json:"priority_id" binding:"required"`
	ParentID    *uint64 `json:"parent_id"`
}

// ListTasks returns the current user's tasks, most urgent deadline first
// Can filter by done and roots
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	input := services.ListTasksInput{
		UserID:     userID,
		Pagination: utils.GetPaginationParams(c),
	}

	if doneStr := c.Query("done"); doneStr != "" {
		done, err := strconv.ParseBool(doneStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid done filter")
			return
		}
		input.Done = &done
	}
	if rootsStr := c.Query("roots"); rootsStr != "" {
		roots, err := strconv.ParseBool(rootsStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid roots filter")
			return
		}
		input.RootsOnly = roots
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, input.Pagination, total))
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task, optionally as a subtask of parent_id
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	dueDate, err := dto.ParseOptionalDate("due_date", req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	deadline, err := dto.ParseDate("deadline", req.Deadline)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		DueDate:     dueDate,
		Deadline:    deadline,
		PriorityID:  req.PriorityID,
		ParentID:    req.ParentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask replaces a task's fields
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, task, ok := h.currentTask(c)
	if !ok {
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	dueDate, err := dto.ParseOptionalDate("due_date", req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	deadline, err := dto.ParseDate("deadline", req.Deadline)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), userID, task, services.UpdateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		DueDate:     dueDate,
		Deadline:    deadline,
		PriorityID:  req.PriorityID,
		ParentID:    req.ParentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// CompleteTask marks a task and its pending subtasks done
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	userID, task, ok := h.currentTask(c)
	if !ok {
		return
	}

	completed, err := h.taskService.CompleteTask(c.Request.Context(), userID, task)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*completed))
}

// DeleteTask deletes a task and its subtasks
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, task, ok := h.currentTask(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, task); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// SuggestSubtasks proposes subtasks for a task using AI. Nothing is saved.
func (h *TaskHandler) SuggestSubtasks(c *gin.Context) {
	userID, task, ok := h.currentTask(c)
	if !ok {
		return
	}

	suggestions, err := h.suggestionService.SuggestSubtasks(c.Request.Context(), userID, task)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": dto.ToSuggestionDTOs(suggestions),
		"count":       len(suggestions),
	})
}

// currentTask returns the user and the id of the task loaded by RequireTaskAccess.
func (h *TaskHandler) currentTask(c *gin.Context) (uint64, uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return 0, 0, false
	}
	return userID, task.ID, true
}
