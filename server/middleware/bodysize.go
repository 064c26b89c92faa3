package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultMaxBodySize = 10 << 20

// BodySizeLimit caps request bodies at maxSize bytes. Values <= 0 use 10MB.
// Reads past the cap fail with *http.MaxBytesError.
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = defaultMaxBodySize
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
