package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/services"
)

// GetProfile returns the caller's account.
func GetProfile(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := middleware.CurrentActor(c)

		user, err := auth.CurrentUser(c.Request.Context(), actor)
		if err != nil {
			respondError(c, err, "Failed to load profile")
			return
		}

		c.JSON(200, gin.H{
			"id":             user.ID,
			"phone_number":   user.PhoneNumber,
			"phone_verified": user.PhoneVerified,
			"role":           user.Role,
			"is_admin":       user.IsAdmin,
			"created_at":     user.CreatedAt,
		})
	}
}
