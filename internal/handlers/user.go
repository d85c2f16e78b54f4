package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/xp-task-api/internal/dto"
	apierrors "github.com/yukikurage/xp-task-api/internal/errors"
	"github.com/yukikurage/xp-task-api/internal/middleware"
	"github.com/yukikurage/xp-task-api/internal/services"
)

// UserHandler serves the current user's profile and days off.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns progress, quota and days off of the current user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProfileDTO(*user))
}

// SetDayOff declares a day off and reports the tasks whose due date moved.
func (h *UserHandler) SetDayOff(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type DayOffRequest struct {
		Date string `json:"date" binding:"required"`
	}

	var req DayOffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	date, err := dto.ParseDate("date", req.Date)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.SetDayOff(c.Request.Context(), userID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDayOffResponse(*result.User, result.Moves))
}

// RemoveDayOff gives back the day off in ?date=.
func (h *UserHandler) RemoveDayOff(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	date, err := dto.ParseDate("date", c.Query("date"))
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.RemoveDayOff(c.Request.Context(), userID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToDayOffResponse(*result.User, result.Moves))
}
