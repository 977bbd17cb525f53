package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/realtime"
)

// Subscribe upgrades the connection and starts streaming change hints. The
// client's job on every hint is to refetch the named list, not to patch.
func Subscribe(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, _, ok := currentUser(c)
		if !ok {
			return
		}
		if err := hub.Subscribe(c.Writer, c.Request, userID(claims)); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("websocket upgrade failed"))
			return
		}
	}
}
