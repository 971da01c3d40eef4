package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockTextExtractionBackend is a mock implementation of port.TextExtractionBackend.
type MockTextExtractionBackend struct {
	mock.Mock
}

func (m *MockTextExtractionBackend) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	args := m.Called(ctx, data, mediaType)
	return args.String(0), args.Error(1)
}
