package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/award-support/crm-service/internal/api/http/handlers"
	"github.com/award-support/crm-service/internal/auth"
	"github.com/award-support/crm-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/login", cfg.Auth.Login)
	api.Post("/register", cfg.Auth.Register)

	// Ticket creation is public so requesters can file without an
	// account; everything else requires a bearer token.
	api.Post("/tickets", cfg.Tickets.CreateTicket)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Put("/:id", cfg.Tickets.UpdateTicket)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	users.Get("/", cfg.Users.ListUsers)
	users.Post("/", cfg.Users.CreateUser)

	dashboard := api.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboard.Get("/metrics", cfg.Dashboard.Metrics)
}
