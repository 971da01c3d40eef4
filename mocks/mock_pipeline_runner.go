package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"intake/internal/domain"
)

// MockPipelineRunner is a mock implementation of service.PipelineRunner.
type MockPipelineRunner struct {
	mock.Mock
}

func (m *MockPipelineRunner) Run(ctx context.Context, docs []domain.RawDocument, questions []domain.Question) (*domain.PrefillResult, error) {
	args := m.Called(ctx, docs, questions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrefillResult), args.Error(1)
}
