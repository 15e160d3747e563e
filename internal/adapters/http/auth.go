package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/podman-remote/internal/core/ports"
	"github.com/melih/podman-remote/internal/logging"
)

const bearerPrefix = "Bearer "

// authDecision is the outcome of checking one Authorization header.
type authDecision int

const (
	authorized authDecision = iota
	rejectedMissingHeader
	rejectedMalformedScheme
	rejectedInvalidToken
)

func (d authDecision) String() string {
	switch d {
	case authorized:
		return "authorized"
	case rejectedMissingHeader:
		return "missing authorization header"
	case rejectedMalformedScheme:
		return "malformed authorization scheme"
	case rejectedInvalidToken:
		return "invalid token"
	}
	return "unknown"
}

// checkBearer decides on a raw Authorization header value.
func checkBearer(tokens ports.TokenValidator, header string) authDecision {
	if header == "" {
		return rejectedMissingHeader
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return rejectedMalformedScheme
	}
	if !tokens.Validate(token) {
		return rejectedInvalidToken
	}
	return authorized
}

// BearerAuth rejects requests lacking "Authorization: Bearer <token>" with a
// valid token. Every rejection is the same bare 401; the reason is only
// logged.
func BearerAuth(tokens ports.TokenValidator, logger *logging.Logger) fiber.Handler {
	log := logger.WithComponent("auth")
	return func(c *fiber.Ctx) error {
		decision := checkBearer(tokens, c.Get(fiber.HeaderAuthorization))
		if decision != authorized {
			log.Warn("request rejected",
				"reason", decision.String(),
				"method", c.Method(),
				"path", c.Path(),
				"remote", c.IP(),
			)
			return fiber.ErrUnauthorized
		}

		log.Debug("authentication successful", "path", c.Path())
		return c.Next()
	}
}
