package services

import (
	"context"
	"fmt"

	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/core/ports"
	"github.com/melih/podman-remote/internal/logging"
)

// UnitService translates service operations onto an init manager session.
// Unit names are normalized to their .service form before any lookup.
type UnitService struct {
	manager ports.UnitManager
	logger  *logging.Logger
}

// NewUnitService creates a unit service backed by manager.
func NewUnitService(manager ports.UnitManager, logger *logging.Logger) *UnitService {
	if logger == nil {
		logger = logging.Default()
	}
	return &UnitService{manager: manager, logger: logger.WithComponent("services")}
}

// List returns every loaded service unit in manager order.
func (s *UnitService) List(ctx context.Context) ([]domain.ServiceInfo, error) {
	sess, err := s.connect(ctx, "list", "")
	if err != nil {
		return nil, err
	}
	defer closeSession(s.logger, sess)

	units, err := sess.ListUnits(ctx)
	if err != nil {
		s.logger.Error("failed to list units", "op", "list", "error", err)
		return nil, fmt.Errorf("%w: list units: %v", domain.ErrBackend, err)
	}

	infos := make([]domain.ServiceInfo, 0, len(units))
	for _, u := range units {
		if u.IsService() {
			infos = append(infos, domain.NewServiceInfo(u))
		}
	}
	return infos, nil
}

// Get returns the current state of one service.
func (s *UnitService) Get(ctx context.Context, name string) (domain.ServiceInfo, error) {
	unit := domain.NormalizeUnitName(name)

	sess, err := s.connect(ctx, "get", unit)
	if err != nil {
		return domain.ServiceInfo{}, err
	}
	defer closeSession(s.logger, sess)

	return s.lookup(ctx, sess, "get", unit)
}

// Apply runs cmd against the service and then rereads its state on the same
// session.
func (s *UnitService) Apply(ctx context.Context, name string, cmd domain.ServiceCommand) (domain.ServiceInfo, error) {
	if !cmd.Valid() {
		return domain.ServiceInfo{}, fmt.Errorf("%w: %s", domain.ErrInvalidCommand, cmd)
	}
	unit := domain.NormalizeUnitName(name)
	op := cmd.String()

	sess, err := s.connect(ctx, op, unit)
	if err != nil {
		return domain.ServiceInfo{}, err
	}
	defer closeSession(s.logger, sess)

	if err := dispatch(ctx, sess, unit, cmd); err != nil {
		s.logger.Error("failed to apply service command", "op", op, "unit", unit, "error", err)
		return domain.ServiceInfo{}, fmt.Errorf("%w: %s %s: %v", domain.ErrBackend, op, unit, err)
	}
	s.logger.Info("applied service command", "op", op, "unit", unit)

	return s.lookup(ctx, sess, op, unit)
}

// dispatch maps each command onto exactly one manager call.
func dispatch(ctx context.Context, sess ports.UnitSession, unit string, cmd domain.ServiceCommand) error {
	switch cmd {
	case domain.CommandStart:
		return sess.StartUnit(ctx, unit)
	case domain.CommandStop:
		return sess.StopUnit(ctx, unit)
	case domain.CommandRestart:
		return sess.RestartUnit(ctx, unit)
	case domain.CommandEnable:
		return sess.EnableUnit(ctx, unit)
	case domain.CommandDisable:
		return sess.DisableUnit(ctx, unit)
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidCommand, cmd)
}

func (s *UnitService) lookup(ctx context.Context, sess ports.UnitSession, op, unit string) (domain.ServiceInfo, error) {
	units, err := sess.ListUnits(ctx)
	if err != nil {
		s.logger.Error("failed to list units", "op", op, "unit", unit, "error", err)
		return domain.ServiceInfo{}, fmt.Errorf("%w: list units: %v", domain.ErrBackend, err)
	}

	for _, u := range units {
		if u.Name == unit {
			return domain.NewServiceInfo(u), nil
		}
	}

	s.logger.Warn("service not found", "op", op, "unit", unit)
	return domain.ServiceInfo{}, fmt.Errorf("%w: service %s", domain.ErrNotFound, unit)
}

func (s *UnitService) connect(ctx context.Context, op, unit string) (ports.UnitSession, error) {
	sess, err := s.manager.Connect(ctx)
	if err != nil {
		s.logger.Error("failed to connect to init manager", "op", op, "unit", unit, "error", err)
		return nil, fmt.Errorf("%w: init manager: %v", domain.ErrUnavailable, err)
	}
	return sess, nil
}
