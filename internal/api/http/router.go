package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-lifecycle/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for user-service route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Users  *handlers.UsersHandler
}

// RegisterRoutes wires the user-service HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	users := app.Group("/users")
	users.Post("", cfg.Users.Create)
	users.Get("", cfg.Users.List)
	users.Get("/:id", cfg.Users.GetByID)
	users.Put("/:id", cfg.Users.Update)
	users.Delete("/:id", cfg.Users.Delete)
}

// NotifierRouteConfig bundles dependencies for notification-service routes.
type NotifierRouteConfig struct {
	Health        *handlers.HealthHandler
	Notifications *handlers.NotificationsHandler
}

// RegisterNotifierRoutes wires the notification-service HTTP routes.
func RegisterNotifierRoutes(app *fiber.App, cfg NotifierRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)

	app.Post("/notifications/send", cfg.Notifications.Send)
}
