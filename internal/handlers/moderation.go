package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/services"
)

// BlockUser hides the caller and the target from each other. Repeating a
// block succeeds.
func BlockUser(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			BlockedID string `json:"blocked_id"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		blockedID, ok := bodyUUID(c, "blocked_id", input.BlockedID)
		if !ok {
			return
		}

		if err := moderation.BlockUser(c.Request.Context(), middleware.CurrentUserID(c), blockedID); err != nil {
			respondError(c, err, "Failed to block user")
			return
		}
		c.JSON(201, gin.H{"success": true})
	}
}

func UnblockUser(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		blockedID, ok := paramUUID(c, "blockedId")
		if !ok {
			return
		}

		if err := moderation.UnblockUser(c.Request.Context(), middleware.CurrentUserID(c), blockedID); err != nil {
			respondError(c, err, "Failed to unblock user")
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

func ListBlocks(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		blocks, err := moderation.ListBlocks(c.Request.Context(), middleware.CurrentUserID(c))
		if err != nil {
			respondError(c, err, "Failed to fetch blocks")
			return
		}
		c.JSON(200, gin.H{"blocks": blocks})
	}
}

// CreateReport files a report against another user.
func CreateReport(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			TargetUserID string  `json:"target_user_id"`
			Reason       string  `json:"reason"`
			Details      *string `json:"details"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.TargetUserID == "" || input.Reason == "" {
			c.JSON(400, gin.H{"error": "target_user_id and reason are required"})
			return
		}
		targetID, ok := bodyUUID(c, "target_user_id", input.TargetUserID)
		if !ok {
			return
		}

		report, err := moderation.CreateReport(c.Request.Context(), middleware.CurrentUserID(c), services.ReportInput{
			TargetUserID: targetID,
			Reason:       models.ReportReason(input.Reason),
			Details:      input.Details,
		})
		if err != nil {
			respondError(c, err, "Failed to submit report")
			return
		}
		c.JSON(201, gin.H{"report": report})
	}
}
