package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"cars-api/internal/common/metrics"
)

const unmatchedRoute = "unmatched"

// Metrics records request count and latency per matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPRequestsInFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.HTTPRequestsInFlight.Dec()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metrics.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
