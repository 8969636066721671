package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
)

// NewApp routes the research API.
func NewApp(handlers *APIHandlers) *fiber.App {
	app := fiber.New()
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, handlers.Ready)

	app.Get("/run", handlers.GetRun)
	app.Post("/uif/validate", handlers.ValidateUIF)
	app.Post("/phases/:phase", handlers.RunPhase)

	return app
}
