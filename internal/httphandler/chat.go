package httphandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roomieradar/roomieradar/internal/middleware"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

// ChatHistory returns the conversation with :otherId oldest first and marks
// the caller's unread messages in it as read.
func (h *Handler) ChatHistory(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.CurrentUserID(c)
	otherID := c.Param("otherId")

	messages, err := h.messagingService.GetChatHistory(ctx, userID, otherID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.messagingService.MarkRead(ctx, userID, otherID); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Failed to mark chat as read")
	}
	c.JSON(http.StatusOK, messages)
}

// ChatSocket upgrades to a websocket and hands it to the chat hub.
func (h *Handler) ChatSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		telemetry.GetContextualLogger(c.Request.Context()).WithError(err).Warn("Websocket upgrade failed")
		return
	}
	h.chat.ServeConn(c.Request.Context(), conn, middleware.CurrentUserID(c))
}

// QueryToken lets a websocket client that cannot set headers pass its token as
// ?token=. A cookie or Authorization header still wins.
func QueryToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.Query("token"); token != "" && middleware.TokenFromRequest(c) == "" {
			c.Request.Header.Set("Authorization", "Bearer "+token)
		}
		c.Next()
	}
}
