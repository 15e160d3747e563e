package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/podman-remote/internal/logging"
)

// AccessLog logs one line per request once the final status is known:
// server errors at error level, client errors at warn, the rest at info.
func AccessLog(logger *logging.Logger) fiber.Handler {
	log := logger.WithComponent("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			// Resolve the status now rather than after we return.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			log.Error("server error", args...)
		case status >= fiber.StatusBadRequest:
			log.Warn("client error", args...)
		default:
			log.Info("response", args...)
		}
		return nil
	}
}
