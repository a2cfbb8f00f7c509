package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes bounds request bodies; a full payload is a few KB.
const DefaultMaxBodyBytes = 64 << 10

// MaxBodyMiddleware caps the request body at limit bytes. Reads past the cap
// fail, which the handlers report as a bad request.
func MaxBodyMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// RequireJSON rejects POST bodies that declare a non-JSON content type. A
// missing Content-Type is let through for clients that omit it.
func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ct := strings.ToLower(c.GetHeader("Content-Type"))
		if ct != "" && !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "text/plain") {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported content type"})
			return
		}
		c.Next()
	}
}
