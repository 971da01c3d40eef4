package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"intake/internal/domain"
)

// MockProfileSink is a mock implementation of port.ProfileSink.
type MockProfileSink struct {
	mock.Mock
}

func (m *MockProfileSink) Record(ctx context.Context, record domain.PrefillRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}
