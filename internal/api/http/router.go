package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/opsdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/opsdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Clients        *handlers.ClientsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", auth.RequireStaff(), cfg.Tickets.AddComment)
	tickets.Post("/:id/resolve", auth.RequireStaff(), cfg.Tickets.Resolve)
	tickets.Post("/:id/transition", auth.RequireStaff(), cfg.Tickets.Transition)
	tickets.Post("/:id/escalate", auth.RequireStaff(), cfg.Tickets.Escalate)
	tickets.Post("/:id/assignments", auth.RequireStaff(), cfg.Tickets.Assign)
	tickets.Post("/:id/attachments", cfg.Tickets.UploadFile)
	tickets.Get("/:id/attachments/:fileID/url", cfg.Tickets.FileURL)

	clients := api.Group("/clients", auth.RequireStaff())
	clients.Get("", cfg.Clients.ListClients)
	clients.Post("/pending", cfg.Clients.SubmitPending)
	clients.Get("/pending", auth.RequireExecutive(), cfg.Clients.ListPending)
	clients.Post("/pending/:id/approve", auth.RequireExecutive(), cfg.Clients.Approve)

	users := api.Group("/users", auth.RequireExecutive())
	users.Post("", cfg.Users.CreateUser)
	users.Post("/import", cfg.Users.ImportUsers)
}
