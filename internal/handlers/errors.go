package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/xp-task-api/internal/dayoff"
	apierrors "github.com/yukikurage/xp-task-api/internal/errors"
	"github.com/yukikurage/xp-task-api/internal/middleware"
	"github.com/yukikurage/xp-task-api/internal/services"
	"github.com/yukikurage/xp-task-api/internal/taskgraph"
)

// respondServiceError maps errors from the task, user and suggestion services
// to API errors.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrParentNotFound),
		errors.Is(err, services.ErrPriorityNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, taskgraph.ErrXPBudget):
		apierrors.XPBudgetExceeded(c, err.Error())
	case errors.Is(err, taskgraph.ErrInvalidDates),
		errors.Is(err, services.ErrInvalidTask):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, dayoff.ErrDayOffState),
		errors.Is(err, services.ErrTaskAlreadyDone):
		apierrors.InvalidState(c, err.Error())
	case errors.Is(err, services.ErrAINoValidTasks):
		apierrors.RespondWithError(c, http.StatusUnprocessableEntity,
			apierrors.NewAPIError(apierrors.ErrCodeOperationFailed, err.Error()))
	case errors.Is(err, services.ErrAIServiceNotConfigured),
		errors.Is(err, context.DeadlineExceeded):
		apierrors.ServiceUnavailable(c, err.Error())
	default:
		log.Printf("request %s failed: %v", middleware.GetRequestID(c), err)
		apierrors.InternalError(c, "")
	}
}
