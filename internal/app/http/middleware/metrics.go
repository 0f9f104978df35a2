package middleware

import (
	"strconv"

	"quizzq-backend/internal/metrics"

	"github.com/gin-gonic/gin"
)

func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
