package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// TimestampHeader carries the caller's clock in epoch milliseconds.
const TimestampHeader = "X-Request-Timestamp"

// CronSecret only admits requests bearing the shared scheduler secret.
// An empty configured secret rejects everything.
func CronSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got, ok := bearer(c.GetHeader("Authorization"))
		if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// RequestFreshness rejects requests whose timestamp header is missing or
// further than window from the server clock.
func RequestFreshness(window time.Duration, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		raw := c.GetHeader(TimestampHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing request timestamp"})
			return
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid request timestamp"})
			return
		}

		skew := now().Sub(time.UnixMilli(ms))
		if skew < 0 {
			skew = -skew
		}
		if skew > window {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Request expired"})
			return
		}
		c.Next()
	}
}
