package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/restaurantos/restaurant-service/internal/api/http/handlers"
	"github.com/restaurantos/restaurant-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Staff          *handlers.StaffHandler
	AuthMiddleware *auth.AuthMiddleware
	Gatherer       prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	// gates are attached per route so unknown paths still answer 404
	authenticated := cfg.AuthMiddleware.Handle
	authGroup.Get("/verify", authenticated, auth.RequireAuthenticated(), cfg.Auth.Verify)
	authGroup.Get("/me/permissions", authenticated, auth.RequireAuthenticated(), cfg.Auth.Permissions)
	authGroup.Get("/navigation", authenticated, auth.RequireAuthenticated(), cfg.Auth.Navigation)

	app.Get("/staff", authenticated, auth.RequirePermission(auth.PermStaffView, auth.PermStaffManage), cfg.Staff.List)
	app.Post("/staff", authenticated, auth.RequirePermission(auth.PermStaffManage), cfg.Staff.Create)
}
