package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/IAC-MUNDO-FITNESS/Mundo-Fitnees/internal/metrics"
)

func nowUTC() time.Time { return time.Now().UTC() }

// MetricsMiddleware records request counts and latency by route template so that
// member ids in the path do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
