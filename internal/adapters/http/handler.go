package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/podman-remote/internal/core/domain"
)

// ContainerTranslator is the container use-case surface the handlers need.
type ContainerTranslator interface {
	List(ctx context.Context) ([]domain.ContainerSummary, error)
	Get(ctx context.Context, id string) (domain.ContainerDetail, error)
	SetRunning(ctx context.Context, id string, running bool) (domain.ContainerDetail, error)
}

// ContainerHandler serves /containers.
type ContainerHandler struct {
	service ContainerTranslator
}

func NewContainerHandler(service ContainerTranslator) *ContainerHandler {
	return &ContainerHandler{service: service}
}

// Register mounts the container routes on r.
func (h *ContainerHandler) Register(r fiber.Router) {
	r.Get("/", h.ListContainers)
	r.Get("/:id", h.GetContainer)
	r.Put("/:id", h.UpdateContainer)
}

func (h *ContainerHandler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.List(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(containers)
}

func (h *ContainerHandler) GetContainer(c *fiber.Ctx) error {
	container, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(container)
}

// UpdateContainer applies a desired run state ({"running": bool}) and
// answers with the container as inspected afterwards.
func (h *ContainerHandler) UpdateContainer(c *fiber.Ctx) error {
	var req domain.UpdateContainerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Running == nil {
		return fiber.ErrUnprocessableEntity
	}

	container, err := h.service.SetRunning(c.UserContext(), c.Params("id"), *req.Running)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(container)
}
