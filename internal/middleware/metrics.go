package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opensettle/marketgate/internal/pkg/metrics"
)

// MetricsMiddleware observes request latency per route. The route template is
// used as the label, not the raw path, so token ids and addresses in the URL
// do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.LatencyBucket.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
