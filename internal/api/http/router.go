package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/erms/internal/api/http/handlers"
	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Engineers      *handlers.EngineersHandler
	Projects       *handlers.ProjectsHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.Profile)

	// protected groups carry their own prefix so the auth middleware never
	// reaches the public /api/auth routes
	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAnyRole()}
	managers := auth.RequireRole(domain.RoleManager)
	admins := auth.RequireRole(domain.RoleAdmin)

	engineers := api.Group("/engineers", authenticated...)
	engineers.Get("/", cfg.Engineers.List)
	engineers.Get("/:id", cfg.Engineers.Get)
	engineers.Put("/:id", cfg.Engineers.Update)
	engineers.Delete("/:id", admins, cfg.Engineers.Delete)
	engineers.Get("/:id/capacity", cfg.Engineers.Capacity)
	engineers.Get("/:id/timeline", cfg.Engineers.Timeline)

	projects := api.Group("/projects", authenticated...)
	projects.Get("/", cfg.Projects.List)
	projects.Post("/", managers, cfg.Projects.Create)
	projects.Get("/:id", cfg.Projects.Get)
	projects.Put("/:id", managers, cfg.Projects.Update)
	projects.Delete("/:id", managers, cfg.Projects.Delete)

	assignments := api.Group("/assignments", authenticated...)
	assignments.Get("/", cfg.Assignments.List)
	assignments.Post("/", managers, cfg.Assignments.Create)
	assignments.Get("/:id", cfg.Assignments.Get)
	assignments.Delete("/:id", managers, cfg.Assignments.Delete)
}
