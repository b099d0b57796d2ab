package middleware

import (
	"log"
	"net/http"

	"reid-dashboard/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit returns a Gin middleware that enforces rate limiting per client IP
func RateLimit(rl *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !rl.Allow(key) {
			stats := rl.GetStats(key)
			log.Printf("[RateLimit] %s exceeded limit on %s", key, c.Request.URL.Path)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "Rate limit exceeded",
				"message": "Too many requests. Please try again later.",
				"stats":   stats,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
