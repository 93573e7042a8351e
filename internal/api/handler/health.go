package handler

import (
	"errors"
	"net/http"
	"strangerchat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Health reports liveness with the real (not inflated) online count.
func (h *Handler) Health(c *gin.Context) {
	snap := h.Hub.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"onlineUsers": snap.Online,
		"activeRooms": snap.Rooms,
	})
}

// Stats returns the live population and, when the ledger is configured, its totals.
func (h *Handler) Stats(c *gin.Context) {
	body := gin.H{"presence": h.Hub.Snapshot()}

	if h.Storage != nil {
		stats, err := h.Storage.GetRoomStats(c.Request.Context())
		switch {
		case errors.Is(err, storage.ErrLedgerDisabled):
		case err != nil:
			h.logger.Error("load room stats", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load room stats"})
			return
		default:
			body["ledger"] = stats
		}
	}
	c.JSON(http.StatusOK, body)
}
