package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAnswerGenerationService is a mock implementation of port.AnswerGenerationService.
type MockAnswerGenerationService struct {
	mock.Mock
}

func (m *MockAnswerGenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
