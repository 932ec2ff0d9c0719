package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/raksha/internal/api/http/handlers"
	"github.com/spec-kit/raksha/internal/auth"
	"github.com/spec-kit/raksha/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	SOS        *handlers.SOSHandler
	Complaints *handlers.ComplaintsHandler
	Device     *handlers.DeviceHandler
	Sessions   auth.SessionSource
	Metrics    *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/session", cfg.Auth.Session)

	device := app.Group("/device")
	device.Post("/button", cfg.Device.Button)
	device.Post("/quick-action", cfg.Device.QuickAction)

	requireSession := auth.RequireSession(cfg.Sessions)

	sos := app.Group("/sos", requireSession)
	sos.Post("/trigger", cfg.SOS.Trigger)
	sos.Post("/resolve", cfg.SOS.Resolve)
	sos.Get("/active", cfg.SOS.Active)
	sos.Get("/history", cfg.SOS.History)

	complaints := app.Group("/complaints", requireSession)
	complaints.Post("", cfg.Complaints.File)
	complaints.Get("", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
}
