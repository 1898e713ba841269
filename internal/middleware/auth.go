package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/models"
	"github.com/Jen9x/TapRide/internal/services"
	"github.com/Jen9x/TapRide/internal/storage"
	"github.com/Jen9x/TapRide/pkg/utils"
)

const (
	ctxUserID  = "userId"
	ctxRole    = "role"
	ctxIsAdmin = "isAdmin"
	ctxActor   = "actor"
)

// TokenValidator verifies an access token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*utils.Claims, error)
}

// AuthMiddleware requires a valid bearer token. The token may also come from
// the "token" query parameter, which websocket clients use. The account is
// reloaded on every request so bans and role changes apply immediately.
func AuthMiddleware(users storage.IUserStorage, tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid token"})
			return
		}

		userID, _ := uuid.Parse(claims.UserID)
		user, err := users.GetByID(c.Request.Context(), userID)
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(401, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(500, gin.H{"error": "Failed to load user"})
			return
		}
		if user.IsBanned {
			c.AbortWithStatusJSON(403, gin.H{"error": "Account suspended"})
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxRole, user.Role)
		c.Set(ctxIsAdmin, user.IsAdmin)
		c.Set(ctxActor, services.Actor{ID: user.ID, Role: user.Role, IsAdmin: user.IsAdmin})
		c.Next()
	}
}

// RequireRole lets the request through only for the listed roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(403, gin.H{"error": "Insufficient permissions"})
	}
}

// RequireAdmin accepts the admin role or the is_admin flag.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok || !(actor.IsAdmin || actor.Role == models.RoleAdmin) {
			c.AbortWithStatusJSON(403, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentActor returns the caller set by AuthMiddleware.
func CurrentActor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(ctxActor)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// CurrentUserID returns the caller's id, or uuid.Nil outside AuthMiddleware.
func CurrentUserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}
