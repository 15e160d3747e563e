package services

import (
	"context"
	"fmt"
	"io"

	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/core/ports"
	"github.com/melih/podman-remote/internal/logging"
)

// ContainerService translates container operations onto an engine session
// and reduces engine failures to the domain error taxonomy.
type ContainerService struct {
	engine ports.ContainerEngine
	logger *logging.Logger
}

// NewContainerService creates a container service backed by engine.
func NewContainerService(engine ports.ContainerEngine, logger *logging.Logger) *ContainerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ContainerService{engine: engine, logger: logger.WithComponent("containers")}
}

// List returns every container, stopped ones included, in engine order.
func (s *ContainerService) List(ctx context.Context) ([]domain.ContainerSummary, error) {
	sess, err := s.connect(ctx, "list", "")
	if err != nil {
		return nil, err
	}
	defer closeSession(s.logger, sess)

	containers, err := sess.ListContainers(ctx)
	if err != nil {
		s.logger.Error("failed to list containers", "op", "list", "error", err)
		return nil, fmt.Errorf("%w: list containers: %v", domain.ErrBackend, err)
	}
	if containers == nil {
		containers = []domain.ContainerSummary{}
	}
	return containers, nil
}

// Get inspects one container. Any inspect failure is reported as not found.
func (s *ContainerService) Get(ctx context.Context, id string) (domain.ContainerDetail, error) {
	sess, err := s.connect(ctx, "get", id)
	if err != nil {
		return domain.ContainerDetail{}, err
	}
	defer closeSession(s.logger, sess)

	detail, err := sess.InspectContainer(ctx, id)
	if err != nil {
		s.logger.Warn("failed to inspect container", "op", "get", "id", id, "error", err)
		return domain.ContainerDetail{}, fmt.Errorf("%w: container %s: %v", domain.ErrNotFound, id, err)
	}
	return detail, nil
}

// SetRunning drives the container towards the desired run state, then
// rereads it on the same session. Failures of either step, including an
// unknown id, are backend errors; a failed reread does not mean the state
// change was rolled back.
func (s *ContainerService) SetRunning(ctx context.Context, id string, running bool) (domain.ContainerDetail, error) {
	op := "stop"
	if running {
		op = "start"
	}

	sess, err := s.connect(ctx, op, id)
	if err != nil {
		return domain.ContainerDetail{}, err
	}
	defer closeSession(s.logger, sess)

	if running {
		err = sess.StartContainer(ctx, id)
	} else {
		err = sess.StopContainer(ctx, id)
	}
	if err != nil {
		s.logger.Error("failed to change container state", "op", op, "id", id, "error", err)
		return domain.ContainerDetail{}, fmt.Errorf("%w: %s container %s: %v", domain.ErrBackend, op, id, err)
	}

	detail, err := sess.InspectContainer(ctx, id)
	if err != nil {
		s.logger.Error("failed to inspect updated container", "op", op, "id", id, "error", err)
		return domain.ContainerDetail{}, fmt.Errorf("%w: reread container %s after %s: %v", domain.ErrBackend, id, op, err)
	}
	return detail, nil
}

func (s *ContainerService) connect(ctx context.Context, op, id string) (ports.ContainerSession, error) {
	sess, err := s.engine.Connect(ctx)
	if err != nil {
		s.logger.Error("failed to connect to container engine", "op", op, "id", id, "error", err)
		return nil, fmt.Errorf("%w: container engine: %v", domain.ErrUnavailable, err)
	}
	return sess, nil
}

func closeSession(logger *logging.Logger, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Debug("failed to close backend session", "error", err)
	}
}
