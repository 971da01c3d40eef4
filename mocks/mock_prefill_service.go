package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"intake/internal/domain"
	"intake/internal/service"
)

// MockPrefillService is a mock implementation of service.PrefillService.
type MockPrefillService struct {
	mock.Mock
}

func (m *MockPrefillService) Prefill(ctx context.Context, input service.PrefillInput) (*domain.PrefillResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrefillResult), args.Error(1)
}

func (m *MockPrefillService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}
