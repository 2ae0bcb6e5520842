package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/teachme-ai/teachme-api/internal/config"
	"github.com/teachme-ai/teachme-api/internal/handler"
	"github.com/teachme-ai/teachme-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler    *handler.StudentHandler
	InvitationHandler *handler.InvitationHandler
	ProfileHandler    *handler.ProfileHandler
	AuditHandler      *handler.AuditHandler
	JWTMiddleware     fiber.Handler
	AuditMiddleware   fiber.Handler
	SearchRateLimit   fiber.Handler
}

// Register wires the HTTP routes into the fiber application. Identity
// verification and audit capture run app-wide so every request, the root
// and health probes included, is recorded before it is routed.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	app.Use(jwtMiddleware)
	if deps.AuditMiddleware != nil {
		app.Use(deps.AuditMiddleware)
	}

	app.Get("/", handler.RootInfo(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	v1 := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	v1.Get("/health", handler.HealthCheck(cfg))

	api := app.Group("/api")

	if deps.StudentHandler != nil {
		if deps.SearchRateLimit != nil {
			api.Use("/students/search", deps.SearchRateLimit)
		}
		deps.StudentHandler.Register(api)
	}

	if deps.InvitationHandler != nil {
		deps.InvitationHandler.Register(api)
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(api)
	}

	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(api)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Endpoint not found",
		})
	})
}
