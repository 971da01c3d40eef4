package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"intake/internal/domain"
)

// MockQuestionSource is a mock implementation of port.QuestionSource.
type MockQuestionSource struct {
	mock.Mock
}

func (m *MockQuestionSource) ListActive(ctx context.Context) ([]domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}
