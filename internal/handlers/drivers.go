package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/services"
)

// ListPublicDrivers is the unauthenticated listing. Phone numbers are always
// null.
func ListPublicDrivers(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := drivers.ListPublic(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to fetch drivers")
			return
		}
		c.JSON(200, gin.H{"drivers": views})
	}
}

// ListDrivers lists drivers for the caller, hiding blocked pairs.
// Query: search, available_only.
func ListDrivers(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := c.Query("search")
		availableOnly := cast.ToBool(c.Query("available_only"))

		views, err := drivers.List(c.Request.Context(), middleware.CurrentUserID(c), search, availableOnly)
		if err != nil {
			respondError(c, err, "Failed to fetch drivers")
			return
		}
		c.JSON(200, gin.H{"drivers": views})
	}
}

func GetDriver(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		view, err := drivers.Get(c.Request.Context(), middleware.CurrentUserID(c), driverID)
		if err != nil {
			respondError(c, err, "Failed to fetch driver")
			return
		}
		c.JSON(200, view)
	}
}

// UpdateDriverStatus sets the caller's own status and broadcasts it.
func UpdateDriverStatus(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramUUID(c, "id")
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

		actor, _ := middleware.CurrentActor(c)
		update, err := drivers.UpdateStatus(c.Request.Context(), actor, driverID, models.DriverStatusValue(input.Status))
		if err != nil {
			respondError(c, err, "Failed to update status")
			return
		}

		c.JSON(200, gin.H{
			"success":      true,
			"status":       update.Status,
			"last_updated": update.LastUpdated,
		})
	}
}

func UpdateDriverProfile(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		var input struct {
			DisplayName  string  `json:"display_name"`
			PhotoURL     *string `json:"photo_url"`
			CarMakeModel *string `json:"car_make_model"`
			Bio          *string `json:"bio"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		actor, _ := middleware.CurrentActor(c)
		err := drivers.UpdateProfile(c.Request.Context(), actor, driverID, services.ProfileInput{
			DisplayName:  input.DisplayName,
			PhotoURL:     input.PhotoURL,
			CarMakeModel: input.CarMakeModel,
			Bio:          input.Bio,
		})
		if err != nil {
			respondError(c, err, "Failed to update profile")
			return
		}
		c.JSON(200, gin.H{"success": true})
	}
}

func UpdateAllowCalls(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		var input struct {
			AllowCalls *bool `json:"allow_calls"`
		}
		if err := c.ShouldBindJSON(&input); err != nil || input.AllowCalls == nil {
			c.JSON(400, gin.H{"error": "allow_calls must be boolean"})
			return
		}

		actor, _ := middleware.CurrentActor(c)
		if err := drivers.SetAllowCalls(c.Request.Context(), actor, driverID, *input.AllowCalls); err != nil {
			respondError(c, err, "Failed to update allow_calls")
			return
		}
		c.JSON(200, gin.H{"success": true, "allow_calls": *input.AllowCalls})
	}
}

// UploadDriverPhoto accepts a multipart "photo" field.
func UploadDriverPhoto(drivers *services.DriverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		driverID, ok := paramUUID(c, "id")
		if !ok {
			return
		}

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(400, gin.H{"error": "photo file is required"})
			return
		}

		actor, _ := middleware.CurrentActor(c)
		url, err := drivers.UploadPhoto(c.Request.Context(), actor, driverID, file)
		if err != nil {
			respondError(c, err, "Failed to upload photo")
			return
		}
		c.JSON(200, gin.H{"success": true, "photo_url": url})
	}
}
