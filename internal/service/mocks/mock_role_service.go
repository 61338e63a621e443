package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"portfolioapi/internal/model"
	"portfolioapi/internal/service"
)

type MockRoleService struct {
	mock.Mock
}

var _ service.RoleService = (*MockRoleService)(nil)

func (m *MockRoleService) Permissions(ctx context.Context, role, orgID string) ([]string, error) {
	args := m.Called(ctx, role, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRoleService) List(ctx context.Context) ([]model.CustomRole, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CustomRole), args.Error(1)
}

func (m *MockRoleService) Create(ctx context.Context, in service.RoleInput) (*model.CustomRole, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomRole), args.Error(1)
}

func (m *MockRoleService) Get(ctx context.Context, id string) (*model.CustomRole, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomRole), args.Error(1)
}

func (m *MockRoleService) Update(ctx context.Context, id string, in service.UpdateRoleInput) (*model.CustomRole, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CustomRole), args.Error(1)
}

func (m *MockRoleService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoleService) AvailablePermissions() []service.PermissionInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]service.PermissionInfo)
}
