package mocks

import (
	"context"

	"github.com/metaarchitect/research-engine/pkg/query"
	"github.com/stretchr/testify/mock"
)

// MockQueryClient is a mock implementation of query.Client interface.
type MockQueryClient struct {
	mock.Mock
}

func (m *MockQueryClient) Ask(ctx context.Context, question string) (query.Answer, error) {
	args := m.Called(ctx, question)

	return args.Get(0).(query.Answer), args.Error(1)
}
