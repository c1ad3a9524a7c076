package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"vendorbook/pkg/logger"
)

// Logger middleware logs one line per request. Health probes and the
// metrics scrape are logged at debug level.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		l := log.WithContext(c.Request.Context())
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if businessID := c.GetString("business_id"); businessID != "" {
			fields = append(fields, "business_id", businessID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, "error", errs)
		}

		if isProbe(path) {
			l.Debugw("http request", fields...)
			return
		}
		l.Infow("http request", fields...)
	}
}

func isProbe(path string) bool {
	return path == "/metrics" || path == "/health/live" || path == "/health/ready"
}
