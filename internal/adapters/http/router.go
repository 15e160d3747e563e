package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/melih/podman-remote/internal/core/ports"
	"github.com/melih/podman-remote/internal/logging"
)

const (
	rootGreeting = "Hello, Podman Remote!"
	healthOK     = "OK"
)

// RouterConfig holds everything the gateway routes are composed from.
type RouterConfig struct {
	Containers ContainerTranslator
	Services   UnitTranslator
	Tokens     ports.TokenValidator
	Logger     *logging.Logger
}

// NewRouter builds the gateway: unauthenticated liveness endpoints plus the
// /containers and /services groups, each behind bearer authentication.
func NewRouter(cfg RouterConfig) *fiber.App {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "podman-remote",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          ErrorHandler(cfg.Logger),
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(AccessLog(cfg.Logger))
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(rootGreeting)
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString(healthOK)
	})

	auth := BearerAuth(cfg.Tokens, cfg.Logger)
	NewContainerHandler(cfg.Containers).Register(app.Group("/containers", auth))
	NewServiceHandler(cfg.Services).Register(app.Group("/services", auth))

	return app
}
