package http

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/logging"
)

// toHTTPError maps the domain taxonomy onto a status. Detail stays in the
// logs; clients only ever see the code.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fiber.ErrNotFound
	case errors.Is(err, domain.ErrInvalidCommand):
		return fiber.ErrUnprocessableEntity
	default:
		return fiber.ErrInternalServerError
	}
}

// parseBody decodes a JSON request body. Syntax errors are 400, well-formed
// bodies of the wrong shape are 422.
func parseBody(c *fiber.Ctx, out any) error {
	err := c.BodyParser(out)
	if err == nil {
		return nil
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fiber.ErrBadRequest
	}
	return fiber.ErrUnprocessableEntity
}

// ErrorHandler writes the status of err with an empty body.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	log := logger.WithComponent("http")
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		} else {
			log.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}

		c.Response().ResetBody()
		c.Status(code)
		return nil
	}
}
