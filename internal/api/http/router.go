package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Staff          *handlers.StaffHandler
	KB             *handlers.KBHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	kb := app.Group("/kb", cfg.AuthMiddleware.Optional)
	kb.Get("/", cfg.KB.List)
	kb.Get("/categories", cfg.KB.Categories)
	kb.Get("/:id", cfg.KB.Get)
	kb.Post("/:id/helpful", cfg.KB.Helpful)

	app.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/messages", cfg.Tickets.AddMessage)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("/users", cfg.Users.Staff)
	staff.Get("/dashboard", cfg.Staff.Dashboard)
	staff.Get("/notifications", cfg.Staff.Notifications)
	staff.Post("/notifications", cfg.Staff.RecordNotification)
	staff.Get("/metrics", cfg.Staff.Metrics)
	staff.Get("/http-metrics", cfg.Staff.HTTPMetrics)

	staff.Post("/tickets/:id/notes", cfg.StaffTickets.AddNote)
	staff.Post("/tickets/:id/assign", cfg.StaffTickets.Assign)
	staff.Post("/tickets/:id/self-assign", cfg.StaffTickets.SelfAssign)
	staff.Post("/tickets/:id/auto-assign", cfg.StaffTickets.AutoAssign)
	staff.Post("/tickets/:id/status", cfg.StaffTickets.ChangeStatus)
	staff.Get("/tickets/:id/transitions", cfg.StaffTickets.Transitions)
	staff.Get("/tickets/:id/history", cfg.Staff.TicketHistory)

	staff.Get("/kb", cfg.KB.List)
	staff.Get("/kb/stats", cfg.KB.Stats)
	staff.Post("/kb", cfg.KB.Create)
	staff.Put("/kb/:id", cfg.KB.Update)
	staff.Delete("/kb/:id", cfg.KB.Delete)
}
