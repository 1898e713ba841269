package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(503, gin.H{"ok": false, "error": "database unavailable"})
			return
		}
		c.JSON(200, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	}
}
