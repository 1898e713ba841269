package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/services"
)

// GetDriverReviews lists a driver's reviews, newest first.
func GetDriverReviews(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramUUID(c, "driverId")
		if !ok {
			return
		}

		reviews, err := ratings.ListReviews(c.Request.Context(), driverID)
		if err != nil {
			respondError(c, err, "Failed to fetch reviews")
			return
		}
		c.JSON(200, gin.H{"reviews": reviews})
	}
}

// SubmitReview rates a driver as the caller.
func SubmitReview(ratings *services.RatingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			DriverID string  `json:"driver_id"`
			Stars    *int    `json:"stars"`
			Comment  *string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "stars must be an integer between 1 and 5"})
			return
		}
		if input.Stars == nil {
			c.JSON(400, gin.H{"error": "driver_id and stars are required"})
			return
		}
		driverID, ok := bodyUUID(c, "driver_id", input.DriverID)
		if !ok {
			return
		}

		review, err := ratings.SubmitReview(c.Request.Context(), services.ReviewInput{
			DriverID:    driverID,
			PassengerID: middleware.CurrentUserID(c),
			Stars:       *input.Stars,
			Comment:     input.Comment,
		})
		if err != nil {
			respondError(c, err, "Failed to submit review")
			return
		}
		c.JSON(201, gin.H{"review": review})
	}
}
