package handlers

import (
	"errors"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/services"
)

// respondError maps a service error to its HTTP status. Anything unmapped is
// a 500 with the fallback message; the cause goes to the request log and to
// Sentry.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrRoleRequired):
		c.JSON(400, gin.H{"error": services.ErrRoleRequired.Message, "new_user": true})
	case errors.As(err, &verr):
		c.JSON(400, gin.H{"error": verr.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(400, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrRateLimited):
		c.JSON(429, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(403, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(401, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("route", c.FullPath())
				hub.CaptureException(err)
			})
		}
		c.JSON(500, gin.H{"error": fallback})
	}
}

// paramUUID parses a path parameter, answering 400 when it is not a uuid.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// bodyUUID parses an id taken from a JSON body field.
func bodyUUID(c *gin.Context, field, value string) (uuid.UUID, bool) {
	if value == "" {
		c.JSON(400, gin.H{"error": field + " is required"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(value)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + field})
		return uuid.Nil, false
	}
	return id, true
}
