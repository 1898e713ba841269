package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/services"
)

// WebSocketHandler upgrades an authenticated request to a status stream.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := middleware.CurrentActor(c)
		services.HandleWebSocket(hub, c.Writer, c.Request, actor.ID, actor.Role)
	}
}
