package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdclab/mdc-service/internal/platform/logging"
	"github.com/mdclab/mdc-service/internal/platform/mdc"
)

// DemoHandler exposes small endpoints that show the diagnostic context
// flowing into log output without any explicit plumbing in handlers.
type DemoHandler struct{}

// NewDemoHandler creates a new demo handler.
func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

// HelloResponse is the response structure for the hello endpoint.
type HelloResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
}

// Hello handles GET /api/v1/hello.
// Returns the request's diagnostic fields as seen from the handler.
func (h *DemoHandler) Hello(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	logger.InfoContext(ctx, "handling hello request")

	requestID, _ := mdc.Get(ctx, mdc.KeyRequestID)
	userID, _ := mdc.Get(ctx, mdc.KeyUserID)

	c.JSON(http.StatusOK, HelloResponse{
		Message:   "hello",
		RequestID: requestID,
		UserID:    userID,
	})
}

// LogLevels handles GET /api/v1/log-levels.
// Emits one log line per level; every line carries the request's fields.
func (h *DemoHandler) LogLevels(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	logger.Log(ctx, logging.LevelTrace, "trace level message")
	logger.DebugContext(ctx, "debug level message")
	logger.InfoContext(ctx, "info level message")
	logger.WarnContext(ctx, "warn level message")
	logger.ErrorContext(ctx, "error level message")

	c.JSON(http.StatusOK, gin.H{"message": "logged at all levels"})
}

// ErrorDemo handles GET /api/v1/error-demo.
// Logs an error with the request's context attached and reports the
// request id a support engineer would grep for.
func (h *DemoHandler) ErrorDemo(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	requestID, _ := mdc.Get(ctx, mdc.KeyRequestID)

	logger.ErrorContext(ctx, "simulated failure",
		slog.String("detail", "this error is intentional"))

	c.JSON(http.StatusOK, gin.H{
		"message":   "error logged, find it by request id",
		"requestId": requestID,
	})
}

// RegisterDemoRoutes registers demo routes on the given router group.
func (h *DemoHandler) RegisterDemoRoutes(rg *gin.RouterGroup) {
	rg.GET("/hello", h.Hello)
	rg.GET("/log-levels", h.LogLevels)
	rg.GET("/error-demo", h.ErrorDemo)
}
