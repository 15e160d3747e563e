package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/podman-remote/internal/core/domain"
)

// UnitTranslator is the service use-case surface the handlers need.
type UnitTranslator interface {
	List(ctx context.Context) ([]domain.ServiceInfo, error)
	Get(ctx context.Context, name string) (domain.ServiceInfo, error)
	Apply(ctx context.Context, name string, cmd domain.ServiceCommand) (domain.ServiceInfo, error)
}

// ServiceHandler serves /services.
type ServiceHandler struct {
	service UnitTranslator
}

func NewServiceHandler(service UnitTranslator) *ServiceHandler {
	return &ServiceHandler{service: service}
}

// Register mounts the service routes on r.
func (h *ServiceHandler) Register(r fiber.Router) {
	r.Get("/", h.ListServices)
	r.Get("/:name", h.GetService)
	r.Put("/:name", h.UpdateService)
}

func (h *ServiceHandler) ListServices(c *fiber.Ctx) error {
	services, err := h.service.List(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(services)
}

func (h *ServiceHandler) GetService(c *fiber.Ctx) error {
	info, err := h.service.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(info)
}

// UpdateService runs one of start, stop, restart, enable or disable and
// answers with the service state read back afterwards.
func (h *ServiceHandler) UpdateService(c *fiber.Ctx) error {
	var req domain.UpdateServiceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if !req.Command.Valid() {
		return fiber.ErrUnprocessableEntity
	}

	info, err := h.service.Apply(c.UserContext(), c.Params("name"), req.Command)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(info)
}
