package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samuelbyalugaba/KenaAI-sub000/internal/metrics"
)

// Metrics records request count and latency per route template, so path
// parameters do not multiply series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
