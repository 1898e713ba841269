package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/services"
)

// GetNotificationPreferences retrieves the caller's notification preferences
func GetNotificationPreferences(push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		preferences, err := push.Preferences(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			respondError(c, err, "Failed to fetch preferences")
			return
		}

		c.JSON(200, preferences)
	}
}

// UpdateNotificationPreferences updates only the provided toggles
func UpdateNotificationPreferences(push *services.PushService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			PushEnabled      *bool `json:"push_enabled"`
			ReviewAlerts     *bool `json:"review_alerts"`
			ModerationAlerts *bool `json:"moderation_alerts"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		preferences, err := push.UpdatePreferences(c.Request.Context(), middleware.CurrentUserID(c), services.PreferenceUpdate{
			PushEnabled:      input.PushEnabled,
			ReviewAlerts:     input.ReviewAlerts,
			ModerationAlerts: input.ModerationAlerts,
		})
		if err != nil {
			respondError(c, err, "Failed to update preferences")
			return
		}

		c.JSON(200, gin.H{
			"message":     "Preferences updated successfully",
			"preferences": preferences,
		})
	}
}
