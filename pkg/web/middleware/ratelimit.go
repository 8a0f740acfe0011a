package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit 全局令牌桶限流，超出时返回 429
func RateLimit(rps float64, burst int, onReject func(c *gin.Context)) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if limiter.Allow() {
			c.Next()
			return
		}
		if onReject != nil {
			onReject(c)
			return
		}
		c.AbortWithStatus(http.StatusTooManyRequests)
	}
}
