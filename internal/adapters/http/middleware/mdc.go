// Package middleware provides HTTP middleware for the gin router.
package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// Header names for inbound identity and outbound correlation.
const (
	// HeaderRequestID carries the request correlation token.
	HeaderRequestID = "X-Request-Id"

	// HeaderUserID carries the caller's user identifier.
	HeaderUserID = "X-User-Id"
)

// AnonymousUser is recorded when no user header is present.
const AnonymousUser = "anonymous"

// generatedIDLength is the length of server-generated request ids.
const generatedIDLength = 8

// MDC returns the request boundary middleware. Per request it:
//   - binds a fresh diagnostic store into the request context
//   - adopts X-Request-Id verbatim when present, else generates a short token
//   - records the user id (X-User-Id, or "anonymous")
//   - echoes the resolved request id on the response
//   - logs one entry and one exit line through the request context
//   - clears the store on every exit path, including panics
//
// It must be the OUTERMOST middleware: recovery runs inside it so panic
// logs still carry the request's fields before cleanup.
func MDC(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := mdc.NewContext(c.Request.Context())

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = generateRequestID()
		}

		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			userID = AnonymousUser
		}

		mdc.Put(ctx, mdc.KeyRequestID, requestID)
		mdc.Put(ctx, mdc.KeyUserID, userID)

		// Cleanup is unconditional: downstream panics propagate through
		// here and the store must not outlive the request.
		defer mdc.Clear(ctx)

		ctx = logging.WithContext(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		c.Writer.Header().Set(HeaderRequestID, requestID)

		// Skip request logging for health check endpoints.
		if strings.HasPrefix(c.Request.URL.Path, "/-/") {
			c.Next()

			return
		}

		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		start := time.Now()

		logger.InfoContext(ctx, "request started",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("client_ip", c.ClientIP()),
		)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}

		logger.Log(ctx, level, "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", latency),
		)
	}
}

// generateRequestID returns a short correlation token. Collisions across
// the id space are accepted; the token identifies a request in logs, it
// is not a security credential.
func generateRequestID() string {
	return uuid.New().String()[:generatedIDLength]
}
