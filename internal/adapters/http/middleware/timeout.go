package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// SimpleTimeout returns middleware that sets a context deadline on the
// request without attempting to abort on timeout. Handlers must check
// ctx.Done() and handle timeout themselves. This is more reliable for
// handlers that do context-aware work, such as waiting on pooled tasks.
func SimpleTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
