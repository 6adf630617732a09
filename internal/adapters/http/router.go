package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mdclab/mdc-service/internal/adapters/http/handlers"
	"github.com/mdclab/mdc-service/internal/adapters/http/middleware"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger attached to every request context.
	Logger *slog.Logger

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// DemoHandler handles the hello/log-levels/error-demo endpoints.
	DemoHandler *handlers.DemoHandler

	// OrderHandler handles order endpoints.
	OrderHandler *handlers.OrderHandler

	// NotificationHandler handles email and notification endpoints.
	NotificationHandler *handlers.NotificationHandler

	// Timeout is the default request timeout for API routes.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. MDC - bind the diagnostic store, resolve request/user ids, log
//     entry/exit, clear on every exit path
//  2. Recovery - catch panics while the store is still populated
//  3. Timeout - request deadline (API routes only)
//
// Route groups:
//   - /-/ (internal): health endpoints, no timeout for probes
//   - /api/v1/ (public API): business endpoints
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.MDC(cfg.Logger),
		middleware.Recovery(cfg.Logger),
	)

	// Health endpoints (no timeout for probes)
	if cfg.HealthHandler != nil {
		health := engine.Group("/-")
		cfg.HealthHandler.RegisterHealthRoutes(health)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.SimpleTimeout(cfg.Timeout))
	}

	if cfg.DemoHandler != nil {
		cfg.DemoHandler.RegisterDemoRoutes(apiV1)
	}

	if cfg.OrderHandler != nil {
		cfg.OrderHandler.RegisterOrderRoutes(apiV1)
	}

	if cfg.NotificationHandler != nil {
		cfg.NotificationHandler.RegisterNotificationRoutes(apiV1)
	}
}
