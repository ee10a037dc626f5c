package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/timetable-core/pkg/metrics"
)

// Metrics returns middleware that records HTTP request metrics via the
// shared Prometheus registry.
func Metrics(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if registry == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		registry.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
