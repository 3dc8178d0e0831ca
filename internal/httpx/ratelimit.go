package httpx

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter caps requests per client IP using a Redis counter with a
// rolling expiry. Fails open when Redis is unavailable.
func RateLimiter(rdb *redis.Client, limit int64, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := "rate_limit:" + c.ClientIP()
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Printf("[ratelimit] redis error: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, per)
		}
		if count > limit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{Success: false, Message: "too many requests"})
			return
		}
		c.Next()
	}
}
