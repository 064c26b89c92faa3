package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/scribekit/logger"
)

var quietPaths = map[string]bool{"/health": true, "/api/health": true}

// RequestLogger logs every request with method, path, status and latency.
// Health probes are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, status,
			"latency", latency.String(),
		)
		if id := c.GetString(logger.FieldRequestID); id != "" {
			fields[logger.FieldRequestID] = id
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}
		logByStatus(log, fields, status)
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
