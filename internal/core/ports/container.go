package ports

import (
	"context"

	"github.com/melih/podman-remote/internal/core/domain"
)

// ContainerEngine opens sessions against a container engine (Docker, Podman).
// Every request acquires its own session and closes it before returning.
type ContainerEngine interface {
	Connect(ctx context.Context) (ContainerSession, error)
}

// ContainerSession is a live connection to the container engine.
type ContainerSession interface {
	// ListContainers returns all containers, stopped ones included, in
	// engine order.
	ListContainers(ctx context.Context) ([]domain.ContainerSummary, error)
	InspectContainer(ctx context.Context, id string) (domain.ContainerDetail, error)
	// StartContainer and StopContainer succeed when the container is
	// already in the requested state.
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	Close() error
}
