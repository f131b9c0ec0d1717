package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/middleware"
)

type swipeRequest struct {
	TargetID  string `json:"target_id"`
	Direction string `json:"direction"`
}

func (h *Handler) Swipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errors.NewValidationError("body", "Malformed swipe"))
		return
	}

	result, err := h.matchingService.ApplySwipe(c.Request.Context(), middleware.CurrentUserID(c), req.TargetID, req.Direction)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) MutualMatches(c *gin.Context) {
	matches, err := h.matchingService.GetMutualMatches(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
