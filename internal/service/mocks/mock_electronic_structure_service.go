package mocks

import (
	"context"

	"matapi/internal/model"
	"matapi/internal/query"
	"matapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockElectronicStructureService struct {
	mock.Mock
}

func (m *MockElectronicStructureService) Get(ctx context.Context, materialID string) (*model.ElectronicStructureDoc, error) {
	args := m.Called(ctx, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ElectronicStructureDoc), args.Error(1)
}

func (m *MockElectronicStructureService) Search(ctx context.Context, p *query.ElectronicStructureParams, limit, offset int) (*service.ElectronicStructureListResult, error) {
	args := m.Called(ctx, p, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ElectronicStructureListResult), args.Error(1)
}

func (m *MockElectronicStructureService) GetBandStructure(ctx context.Context, materialID string, pathType model.BSPathType, lineMode bool) (model.Object, error) {
	args := m.Called(ctx, materialID, pathType, lineMode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Object), args.Error(1)
}

func (m *MockElectronicStructureService) GetBandStructureByTask(ctx context.Context, taskID string) (model.Object, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Object), args.Error(1)
}

func (m *MockElectronicStructureService) GetDos(ctx context.Context, materialID string) (model.Object, error) {
	args := m.Called(ctx, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Object), args.Error(1)
}

func (m *MockElectronicStructureService) GetDosByTask(ctx context.Context, taskID string) (model.Object, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.Object), args.Error(1)
}
