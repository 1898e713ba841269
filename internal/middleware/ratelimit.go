package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/Jen9x/TapRide/pkg/logger"
)

// RateLimiter counts one hit against key and reports the window state.
// *limiter.Limiter satisfies it.
type RateLimiter interface {
	Get(ctx context.Context, key string) (limiter.Context, error)
}

// NewRateLimiter allows max hits per window on every key kept in store.
func NewRateLimiter(store limiter.Store, max int, window time.Duration) *limiter.Limiter {
	return limiter.New(store, limiter.Rate{Period: window, Limit: int64(max)})
}

// NewMemoryStore keeps rate-limit windows in process. Used when Redis is not
// configured.
func NewMemoryStore() limiter.Store {
	return memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "ratelimit",
		CleanUpInterval: time.Minute,
	})
}

// RateLimit limits requests per client IP. Requests pass when the limiter
// itself fails.
func RateLimit(l RateLimiter, name string, log logger.ILogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, err := l.Get(c.Request.Context(), name+":"+c.ClientIP())
		if err != nil {
			log.Warning("rate limiter unavailable", logger.String("limiter", name), logger.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(ctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(ctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(ctx.Reset, 10))

		if ctx.Reached {
			retry := ctx.Reset - time.Now().Unix()
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retry, 10))
			c.AbortWithStatusJSON(429, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
