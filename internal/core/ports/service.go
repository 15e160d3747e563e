package ports

import (
	"context"

	"github.com/melih/podman-remote/internal/core/domain"
)

// UnitManager opens sessions against an init-system manager.
type UnitManager interface {
	Connect(ctx context.Context) (UnitSession, error)
}

// UnitSession is a live connection to the init-system manager. Unit names
// passed to it are already fully qualified.
type UnitSession interface {
	ListUnits(ctx context.Context) ([]domain.Unit, error)

	// Lifecycle transitions replace any conflicting queued job for the unit.
	StartUnit(ctx context.Context, name string) error
	StopUnit(ctx context.Context, name string) error
	RestartUnit(ctx context.Context, name string) error

	EnableUnit(ctx context.Context, name string) error
	DisableUnit(ctx context.Context, name string) error

	Close() error
}
