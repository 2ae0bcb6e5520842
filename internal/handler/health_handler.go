package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/teachme-ai/teachme-api/internal/config"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// RootInfo returns the liveness/info handler served at the API root.
func RootInfo(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": cfg.AppName,
			"version": "1.0.0",
			"status":  "running",
		})
	}
}

// HealthCheck returns a handler that reports application health.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		})
	}
}
