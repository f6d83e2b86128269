package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/helpdesk-kit/helpdesk-service/internal/auth"
	"github.com/helpdesk-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Desk           *handlers.DeskHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	authProtected.Post("/password/change", cfg.Users.ChangePassword)
	authProtected.Get("/me", cfg.Users.Me)

	adminOnly := authGroup.Group("", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleAdministrator))
	adminOnly.Post("/users", cfg.Users.CreateUser)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.GetTicketHistory)

	desk := app.Group("/desk", cfg.AuthMiddleware.Handle, auth.RequireAttendant())
	desk.Get("/next", cfg.Desk.NextTicket)
	desk.Get("/mine", cfg.Desk.MyTickets)
	desk.Get("/tickets", cfg.Desk.ListTickets)
	desk.Post("/tickets/:id/claim", cfg.Desk.ClaimTicket)
	desk.Post("/tickets/:id/complete", cfg.Desk.CompleteTicket)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle,
		auth.RequireRole(domain.RoleTechnician, domain.RoleAdministrator))
	reports.Get("/summary", cfg.Reports.Summary)
	reports.Get("/technicians", cfg.Reports.Technicians)
	reports.Get("/trend", cfg.Reports.Trend)
}
