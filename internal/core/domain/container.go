package domain

import (
	"github.com/docker/docker/api/types"
)

// ContainerSummary is a list entry as reported by the container engine.
// The gateway relays it verbatim and never mutates it.
type ContainerSummary = types.Container

// ContainerDetail is the engine's inspect document for a single container.
type ContainerDetail = types.ContainerJSON

// UpdateContainerRequest expresses the desired run state of a container,
// not an action: true means "ensure started", false "ensure stopped".
type UpdateContainerRequest struct {
	Running *bool `json:"running"`
}
