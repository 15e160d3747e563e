// Package mocks provides testify doubles for the core ports.
package mocks

import (
	"context"

	"github.com/melih/podman-remote/internal/core/domain"
	"github.com/melih/podman-remote/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type ContainerEngine struct {
	mock.Mock
}

func (m *ContainerEngine) Connect(ctx context.Context) (ports.ContainerSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ContainerSession), args.Error(1)
}

type ContainerSession struct {
	mock.Mock
}

func (m *ContainerSession) ListContainers(ctx context.Context) ([]domain.ContainerSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContainerSummary), args.Error(1)
}

func (m *ContainerSession) InspectContainer(ctx context.Context, id string) (domain.ContainerDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ContainerDetail), args.Error(1)
}

func (m *ContainerSession) StartContainer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContainerSession) StopContainer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ContainerSession) Close() error {
	return m.Called().Error(0)
}

type UnitManager struct {
	mock.Mock
}

func (m *UnitManager) Connect(ctx context.Context) (ports.UnitSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.UnitSession), args.Error(1)
}

type UnitSession struct {
	mock.Mock
}

func (m *UnitSession) ListUnits(ctx context.Context) ([]domain.Unit, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Unit), args.Error(1)
}

func (m *UnitSession) StartUnit(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *UnitSession) StopUnit(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *UnitSession) RestartUnit(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *UnitSession) EnableUnit(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *UnitSession) DisableUnit(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *UnitSession) Close() error {
	return m.Called().Error(0)
}
