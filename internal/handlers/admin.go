package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/services"
)

// ListReports returns open reports first, newest first.
func ListReports(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := moderation.ListReports(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to fetch reports")
			return
		}
		c.JSON(200, gin.H{"reports": reports})
	}
}

func UpdateReportStatus(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reportID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		var input struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if err := moderation.UpdateReportStatus(c.Request.Context(), reportID, models.ReportStatus(input.Status)); err != nil {
			respondError(c, err, "Failed to update report")
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

func SetUserBan(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		var input struct {
			IsBanned *bool `json:"is_banned"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.IsBanned == nil {
			c.JSON(400, gin.H{"error": "is_banned must be boolean"})
			return
		}

		if err := moderation.SetBanned(c.Request.Context(), userID, *input.IsBanned); err != nil {
			respondError(c, err, "Failed to update ban status")
			return
		}
		c.JSON(200, gin.H{"success": true, "is_banned": *input.IsBanned})
	}
}

// DeleteReview removes a review and recomputes the driver's rating.
func DeleteReview(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviewID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		if err := ratings.DeleteReview(c.Request.Context(), reviewID); err != nil {
			respondError(c, err, "Failed to delete review")
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

func ListUsers(moderation *services.ModerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := moderation.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to fetch users")
			return
		}
		c.JSON(200, gin.H{"users": users})
	}
}
