package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/services"
)

// RegisterFCMToken registers or updates the caller's FCM token
func RegisterFCMToken(push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			FCMToken string `json:"fcm_token" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "fcm_token is required"})
			return
		}

		if err := push.RegisterToken(c.Request.Context(), middleware.CurrentUserID(c), input.FCMToken); err != nil {
			respondError(c, err, "Failed to register FCM token")
			return
		}

		c.JSON(200, gin.H{"message": "FCM token registered successfully"})
	}
}

// RemoveFCMToken removes the caller's FCM token
func RemoveFCMToken(push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := push.RemoveToken(c.Request.Context(), middleware.CurrentUserID(c)); err != nil {
			respondError(c, err, "Failed to remove FCM token")
			return
		}

		c.JSON(200, gin.H{"message": "FCM token removed successfully"})
	}
}
