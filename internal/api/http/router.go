package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/elotech/helpdesk/internal/api/http/handlers"
	"github.com/elotech/helpdesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AdminTickets   *handlers.AdminTicketsHandler
	Technicians    *handlers.TechniciansHandler
	Articles       *handlers.ArticlesHandler
	Suggestions    *handlers.SuggestionsHandler
	Stream         *handlers.StreamHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	session := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	session.Get("/me", cfg.Users.Me)
	session.Patch("/profile", cfg.Users.UpdateProfile)
	session.Post("/password/change", cfg.Users.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/interactions", cfg.Tickets.AddInteraction)
	tickets.Put("/:id/typing", cfg.Tickets.SetTyping)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/tickets", cfg.AdminTickets.ListTickets)
	admin.Get("/tickets/:id", cfg.AdminTickets.GetTicket)
	admin.Post("/tickets/:id/interactions", cfg.AdminTickets.AddInteraction)
	admin.Post("/tickets/:id/technician-interactions", cfg.AdminTickets.AddTechnicianInteraction)
	admin.Put("/tickets/:id/status", cfg.AdminTickets.SetStatus)
	admin.Put("/tickets/:id/priority", cfg.AdminTickets.SetPriority)
	admin.Put("/tickets/:id/assignee", cfg.AdminTickets.AssignTechnician)
	admin.Put("/tickets/:id/typing", cfg.AdminTickets.SetTyping)
	admin.Delete("/tickets/:id", cfg.AdminTickets.DeleteTicket)

	admin.Post("/technicians", cfg.Technicians.Create)
	admin.Put("/technicians/:id", cfg.Technicians.Update)
	admin.Post("/articles", cfg.Articles.Create)
	admin.Post("/suggestions/technician", cfg.Suggestions.SuggestTechnician)

	authed := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authed.Get("/technicians", cfg.Technicians.List)
	authed.Get("/technicians/:id", cfg.Technicians.Get)
	authed.Get("/articles", cfg.Articles.List)
	authed.Post("/suggestions/classify", cfg.Suggestions.Classify)

	ws := app.Group("/ws", cfg.Stream.Upgrade)
	ws.Get("/tickets", cfg.Stream.WatchTickets())
	ws.Get("/tickets/:id", cfg.Stream.WatchTicket())
}
