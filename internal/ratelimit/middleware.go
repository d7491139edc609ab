package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
)

// Middleware rejects requests the limiter does not admit with 429
// {error, resetIn} and a Retry-After header. onReject may be nil.
func Middleware(l *Limiter, onReject func(Decision)) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := l.Allow()
		if d.Allowed {
			c.Next()
			return
		}

		if onReject != nil {
			onReject(d)
		}

		resetMs := d.ResetIn.Milliseconds()
		logger.FromContext(c.Request.Context()).Warn("Rate limit exceeded",
			logger.String("window", d.Window),
			logger.Int64("reset_in_ms", resetMs),
			logger.String("path", c.Request.URL.Path),
		)

		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(d.ResetIn.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "Rate limit exceeded. Please try again later.",
			"resetIn": resetMs,
		})
	}
}
