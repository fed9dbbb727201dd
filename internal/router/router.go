package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bulletin-app/bulletin-api/internal/config"
	"github.com/bulletin-app/bulletin-api/internal/handler"
	"github.com/bulletin-app/bulletin-api/internal/middleware"
	"github.com/bulletin-app/bulletin-api/internal/models"
	"github.com/bulletin-app/bulletin-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler        *handler.AuthHandler
	PostHandler        *handler.PostHandler
	UserHandler        *handler.UserHandler
	ActivityLogHandler *handler.ActivityLogHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	editorGate := middleware.RequireRole(models.RoleEditor, models.RoleAdmin)
	adminGate := middleware.RequireRole(models.RoleAdmin)

	// Auth, flat under the base and throttled per route
	if deps.AuthHandler != nil {
		throttle := middleware.RateLimit("auth", cfg.AuthRateLimit, cfg.AuthRateWindow)
		deps.AuthHandler.Register(api, throttle, jwtMiddleware)
	}

	// Posts, with per-route gates since reads stay public
	if deps.PostHandler != nil {
		posts := api.Group("/posts")
		deps.PostHandler.Register(posts, jwtMiddleware, editorGate, adminGate)
	}

	// Users (admin only)
	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware, adminGate)
		deps.UserHandler.Register(users)
	}

	// Activity logs
	if deps.ActivityLogHandler != nil {
		logs := api.Group("/activity-logs", jwtMiddleware)
		deps.ActivityLogHandler.Register(logs, adminGate)
	}
}
