package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openfin/accounts-api/internal/ratelimit"
)

// RateLimitHeaders advertises the caller's remaining budget for the endpoint
// on every response. Enforcement lives in the pipeline, not here; this is
// informational only and must run after AuthMiddleware.
func RateLimitHeaders(limiter ratelimit.Limiter, endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if org, ok := GetOrganizationID(c); ok {
			remaining := limiter.Remaining(c.Request.Context(), org, endpoint)
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}
		c.Next()
	}
}
