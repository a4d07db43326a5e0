package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Sherryli112/HatGiveMe/internal/api/http/handlers"
	"github.com/Sherryli112/HatGiveMe/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Products       *handlers.ProductsHandler
	Orders         *handlers.OrdersHandler
	AuthMiddleware *auth.AuthMiddleware
	APIKey         string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Public auth endpoints sit behind the deployment API key.
	authGroup := app.Group("/auth")
	authGroup.Post("/register", auth.RequireAPIKey(cfg.APIKey), cfg.Auth.Register)
	authGroup.Post("/login", auth.RequireAPIKey(cfg.APIKey), cfg.Auth.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	users.Get("/profile", cfg.Users.Profile)
	users.Patch("/profile", cfg.Users.UpdateProfile)
	users.Delete("/me", cfg.Users.DeactivateSelf)
	users.Get("/", auth.RequireAdmin(), cfg.Users.List)
	users.Post("/admins", auth.RequireAdmin(), cfg.Users.CreateAdmin)
	users.Patch("/:id/status", auth.RequireAdmin(), cfg.Users.UpdateStatus)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Products.Create)
	products.Patch("/:id", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Products.Update)

	orders := app.Group("/orders", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/my", cfg.Orders.ListMine)
	orders.Get("/", auth.RequireAdmin(), cfg.Orders.List)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Patch("/:id/status", auth.RequireAdmin(), cfg.Orders.UpdateStatus)
}
