package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/mdclab/mdc-service/internal/adapters/http/dto"
	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// Recovery returns middleware that recovers from panics.
// On panic, it:
//   - Logs the error with full stack trace at ERROR level, with the
//     request's diagnostic fields still attached
//   - Returns a 500 Internal Server Error with the standard error envelope
//
// It runs inside the MDC middleware so the panic log line still carries
// the request id; cleanup happens afterwards, in the outer middleware.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()

				ctx := c.Request.Context()
				ctxLogger := logging.FromContext(ctx)

				ctxLogger.ErrorContext(ctx, "panic recovered",
					slog.Any("error", r),
					slog.String("stack", string(stack)),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)

				errResp := dto.NewErrorResponse(
					dto.ErrorCodeInternal,
					"an internal error occurred",
				)

				if requestID, ok := mdc.Get(ctx, mdc.KeyRequestID); ok {
					errResp.RequestID = requestID
				}

				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, errResp)
				} else {
					c.Abort()
				}
			}
		}()

		c.Next()
	}
}
