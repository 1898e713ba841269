package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/services"
)

// SendOTP issues a login code to the phone number.
func SendOTP(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			PhoneNumber string `json:"phone_number" binding:"required"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "phone_number is required"})
			return
		}

		dev, err := auth.SendOTP(c.Request.Context(), input.PhoneNumber)
		if err != nil {
			respondError(c, err, "Failed to send OTP. Please try again.")
			return
		}

		if dev {
			c.JSON(200, gin.H{"success": true, "dev": true})
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

// VerifyOTP checks the code and returns an access token, creating the account
// on first login.
func VerifyOTP(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			PhoneNumber string `json:"phone_number" binding:"required"`
			Code        string `json:"code" binding:"required"`
			Role        string `json:"role"`
			DisplayName string `json:"display_name"`
		}

		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": "phone_number and code are required"})
			return
		}

		res, err := auth.VerifyOTP(c.Request.Context(), services.VerifyInput{
			PhoneNumber: input.PhoneNumber,
			Code:        input.Code,
			Role:        models.Role(input.Role),
			DisplayName: input.DisplayName,
		})
		if err != nil {
			respondError(c, err, "OTP verification failed")
			return
		}

		c.JSON(200, gin.H{
			"token": res.Token,
			"user": gin.H{
				"id":           res.User.ID,
				"role":         res.User.Role,
				"is_admin":     res.User.IsAdmin,
				"phone_number": res.User.PhoneNumber,
			},
			"new_user": res.IsNewUser,
		})
	}
}
