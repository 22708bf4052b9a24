package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edulens/engagement-api/internal/config"
	"github.com/edulens/engagement-api/internal/handler"
	"github.com/edulens/engagement-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EngagementHandler *handler.EngagementHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EngagementHandler != nil {
		engagement := api.Group("/engagement", jwtMiddleware)
		deps.EngagementHandler.Register(engagement)
	}
}
