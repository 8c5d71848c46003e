package mocks

import (
	"context"

	"matapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) FetchObject(ctx context.Context, taskID string) (model.RawObject, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.RawObject), args.Error(1)
}

func (m *MockObjectStore) PutObject(ctx context.Context, taskID string, payload model.RawObject) error {
	args := m.Called(ctx, taskID, payload)
	return args.Error(0)
}
