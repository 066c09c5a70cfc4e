package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
)

// WriteRateLimiter limits write requests per user (falling back to client IP
// for guests) using Redis INCR+EXPIRE in a pipeline for atomicity.
func WriteRateLimiter(redisClient *redis.Client, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := GetUserEmail(c)
		if subject == "" {
			subject = c.ClientIP()
		}
		key := fmt.Sprintf("ratelimit:write:%s", subject)

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(c.Request.Context(), key)
		pipe.Expire(c.Request.Context(), key, window)

		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			// Redis being down must not take writes down with it.
			c.Next()
			return
		}

		if incr.Val() > int64(requestsPerWindow) {
			_ = c.Error(apperrors.RateLimitExceeded("Too many requests", int(window.Seconds())))
			c.Abort()
			return
		}

		c.Next()
	}
}
