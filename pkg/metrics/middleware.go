package metrics

import "github.com/gin-gonic/gin"

// Middleware counts every request and its terminal status.
func Middleware(c *Collector) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()
		c.RecordRequest(ctx.Writer.Status())
	}
}
