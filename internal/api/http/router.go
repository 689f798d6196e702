package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-service/internal/auth"
	"github.com/spec-kit/parking-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Vehicles       *handlers.VehiclesHandler
	Slots          *handlers.SlotsHandler
	SlotRequests   *handlers.SlotRequestsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// NewApp builds the fiber application with the global middlewares and every route.
func NewApp(name string, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{AppName: name, DisableStartupMessage: true})
	RegisterMiddlewares(app, logger, metrics, timeout)
	RegisterRoutes(app, routes)
	return app
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authn := cfg.AuthMiddleware.Handle
	admin := auth.RequireAdmin()

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", authn, cfg.Auth.Me)
	authGroup.Post("/logout", authn, cfg.Auth.Logout)

	users := app.Group("/users", authn)
	users.Put("/profile", cfg.Auth.UpdateProfile)
	users.Put("/password", cfg.Auth.ChangePassword)
	users.Get("/", admin, cfg.Users.List)
	users.Post("/", admin, cfg.Users.Create)
	users.Get("/:id", admin, cfg.Users.Get)
	users.Put("/:id", admin, cfg.Users.Update)
	users.Delete("/:id", admin, cfg.Users.Delete)

	vehicles := app.Group("/vehicles", authn)
	vehicles.Get("/", cfg.Vehicles.List)
	vehicles.Post("/", cfg.Vehicles.Create)
	vehicles.Get("/:id", cfg.Vehicles.Get)
	vehicles.Put("/:id", cfg.Vehicles.Update)
	vehicles.Delete("/:id", cfg.Vehicles.Delete)
	vehicles.Patch("/:id/approve", admin, cfg.Vehicles.Approve)
	vehicles.Patch("/:id/reject", admin, cfg.Vehicles.Reject)

	slots := app.Group("/parking-slots", authn)
	slots.Get("/", cfg.Slots.List)
	slots.Post("/", admin, cfg.Slots.Create)
	slots.Post("/bulk", admin, cfg.Slots.BulkCreate)
	slots.Get("/:id", cfg.Slots.Get)
	slots.Put("/:id", admin, cfg.Slots.Update)
	slots.Delete("/:id", admin, cfg.Slots.Delete)

	requests := app.Group("/slot-requests", authn)
	requests.Get("/", cfg.SlotRequests.List)
	requests.Post("/", cfg.SlotRequests.Create)
	requests.Get("/:id", cfg.SlotRequests.Get)
	requests.Put("/:id", cfg.SlotRequests.Update)
	requests.Delete("/:id", cfg.SlotRequests.Delete)
	requests.Put("/:id/approve", admin, cfg.SlotRequests.Approve)
	requests.Put("/:id/reject", admin, cfg.SlotRequests.Reject)
	requests.Get("/:id/reason", cfg.SlotRequests.Reason)
}
