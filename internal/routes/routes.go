package routes

import (
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"

	"github.com/Jen9x/TapRide/internal/config"
	"github.com/Jen9x/TapRide/internal/handlers"
	"github.com/Jen9x/TapRide/internal/middleware"
	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/services"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/logger"
)

// Deps is everything the router needs.
type Deps struct {
	Config     config.Config
	Log        logger.ILogger
	Store      storage.IStorage
	Tokens     middleware.TokenValidator
	RateLimits limiter.Store
	Hub        *services.Hub
	Auth       *services.AuthService
	Drivers    *services.DriverService
	Ratings    *services.RatingService
	Moderation *services.ModerationService
	Push       *services.PushService
	// UploadDir is served under /uploads when photos are stored locally.
	UploadDir string
}

func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(middleware.RequestLogger(d.Log))

	corsConfig := cors.DefaultConfig()
	if d.Config.ClientURL == "" || d.Config.ClientURL == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = splitOrigins(d.Config.ClientURL)
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	r.GET("/health", handlers.Health(d.Store))

	auth := middleware.AuthMiddleware(d.Store.User(), d.Tokens)
	canDrive := middleware.RequireRole(models.RoleDriver, models.RoleAdmin)
	canReview := middleware.RequireRole(models.RolePassenger, models.RoleAdmin)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(middleware.NewRateLimiter(d.RateLimits, d.Config.RateLimitMax, d.Config.RateLimitWindow), "api", d.Log))
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimit(middleware.NewRateLimiter(d.RateLimits, d.Config.AuthRateLimitMax, d.Config.AuthRateLimitWindow), "auth", d.Log))
		{
			authGroup.POST("/send-otp", handlers.SendOTP(d.Auth))
			authGroup.POST("/verify-otp", handlers.VerifyOTP(d.Auth))
		}
		api.GET("/auth/me", auth, handlers.GetProfile(d.Auth))

		api.GET("/drivers/public", handlers.ListPublicDrivers(d.Drivers))

		// WebSocket connection; browsers pass the token as a query parameter.
		api.GET("/ws", auth, handlers.WebSocketHandler(d.Hub))

		protected := api.Group("")
		protected.Use(auth)
		{
			drivers := protected.Group("/drivers")
			{
				drivers.GET("", handlers.ListDrivers(d.Drivers))
				drivers.GET("/:id", handlers.GetDriver(d.Drivers))
				drivers.PATCH("/:id/status", canDrive, handlers.UpdateDriverStatus(d.Drivers))
				drivers.PATCH("/:id/profile", canDrive, handlers.UpdateDriverProfile(d.Drivers))
				drivers.PATCH("/:id/allow-calls", canDrive, handlers.UpdateAllowCalls(d.Drivers))
				drivers.POST("/:id/photo", canDrive, handlers.UploadDriverPhoto(d.Drivers))
			}

			reviews := protected.Group("/reviews")
			{
				reviews.GET("/:driverId", handlers.GetDriverReviews(d.Ratings))
				reviews.POST("", canReview, handlers.SubmitReview(d.Ratings))
			}

			blocks := protected.Group("/blocks")
			{
				blocks.GET("", handlers.ListBlocks(d.Moderation))
				blocks.POST("", handlers.BlockUser(d.Moderation))
				blocks.DELETE("/:blockedId", handlers.UnblockUser(d.Moderation))
			}

			protected.POST("/reports", handlers.CreateReport(d.Moderation))

			notifications := protected.Group("/notifications")
			{
				notifications.POST("/register-token", handlers.RegisterFCMToken(d.Push))
				notifications.DELETE("/remove-token", handlers.RemoveFCMToken(d.Push))
				notifications.GET("/preferences", handlers.GetNotificationPreferences(d.Push))
				notifications.PUT("/preferences", handlers.UpdateNotificationPreferences(d.Push))
			}

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin())
			{
				admin.GET("/reports", handlers.ListReports(d.Moderation))
				admin.PATCH("/reports/:id", handlers.UpdateReportStatus(d.Moderation))
				admin.GET("/users", handlers.ListUsers(d.Moderation))
				admin.PATCH("/users/:id/ban", handlers.SetUserBan(d.Moderation))
				admin.DELETE("/reviews/:id", handlers.DeleteReview(d.Ratings))
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Not found"})
	})

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
