package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogging logs one line per request with method, path, status, and
// duration. Health probes are skipped.
func RequestLogging(logger *log.Logger) gin.HandlerFunc {
	skip := map[string]bool{
		"/health":     true,
		"/api/health": true,
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Printf("%s %s %d %v %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
	}
}
