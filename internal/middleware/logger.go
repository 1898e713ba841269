package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Jen9x/TapRide/pkg/logger"
)

// RequestLogger writes one line per request. Server errors log at error
// level together with any errors attached through c.Error.
func RequestLogger(log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", status),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny).String(); errs != "" {
			fields = append(fields, logger.String("errors", errs))
		}

		switch {
		case status >= 500:
			log.Error("request failed", fields...)
		case status >= 400:
			log.Warning("request rejected", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
