package mocks

import (
	"context"

	"github.com/metaarchitect/research-engine/pkg/persistence"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) List(ctx context.Context, table string, opts persistence.ListOptions) ([]*persistence.Record, error) {
	args := m.Called(ctx, table, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*persistence.Record), args.Error(1)
}

func (m *MockPersistence) Get(ctx context.Context, table, id string) (*persistence.Record, error) {
	args := m.Called(ctx, table, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.Record), args.Error(1)
}

func (m *MockPersistence) Create(ctx context.Context, table string, fields map[string]any) (*persistence.Record, error) {
	args := m.Called(ctx, table, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.Record), args.Error(1)
}

func (m *MockPersistence) Update(ctx context.Context, table, id string, fields map[string]any) (*persistence.Record, error) {
	args := m.Called(ctx, table, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.Record), args.Error(1)
}

func (m *MockPersistence) Delete(ctx context.Context, table, id string) (*persistence.Record, error) {
	args := m.Called(ctx, table, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*persistence.Record), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
