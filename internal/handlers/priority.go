package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/xp-task-api/internal/dto"
	"github.com/yukikurage/xp-task-api/internal/services"
)

type PriorityHandler struct {
	priorityService *services.PriorityService
}

func NewPriorityHandler(priorityService *services.PriorityService) *PriorityHandler {
	return &PriorityHandler{priorityService: priorityService}
}

// ListPriorities returns every priority with its XP
func (h *PriorityHandler) ListPriorities(c *gin.Context) {
	priorities, err := h.priorityService.ListPriorities()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]dto.PriorityDTO, len(priorities))
	for i, p := range priorities {
		out[i] = dto.ToPriorityDTO(p)
	}
	c.JSON(http.StatusOK, gin.H{"priorities": out})
}
