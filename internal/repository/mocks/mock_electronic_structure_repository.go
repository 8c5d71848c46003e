package mocks

import (
	"context"

	"matapi/internal/model"
	"matapi/internal/query"
	"matapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockElectronicStructureRepository struct {
	mock.Mock
}

func (m *MockElectronicStructureRepository) FindByMaterialID(ctx context.Context, materialID string, fields ...string) (*model.ElectronicStructureDoc, error) {
	callArgs := make([]any, 0, len(fields)+2)
	callArgs = append(callArgs, ctx, materialID)
	for _, f := range fields {
		callArgs = append(callArgs, f)
	}
	args := m.Called(callArgs...)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ElectronicStructureDoc), args.Error(1)
}

func (m *MockElectronicStructureRepository) List(ctx context.Context, p *query.ElectronicStructureParams, pq repository.PageQuery) (*repository.PageResult[model.ElectronicStructureDoc], error) {
	args := m.Called(ctx, p, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ElectronicStructureDoc]), args.Error(1)
}
