package handler

import (
	"strangerchat/backend/internal/chathub"

	"github.com/gin-gonic/gin"
)

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket. No identity is taken from the
// request: a session is minted only when the client sends join-chat.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		h.logger.Warn("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, h.cfg, h.logger)

	// Run реєструє клієнта в хабі та запускає його pumps.
	client.Run()
}
