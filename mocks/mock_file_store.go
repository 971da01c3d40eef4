package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockFileStore is a mock implementation of port.FileStore.
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, name, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *MockFileStore) Get(ctx context.Context, handle string) ([]byte, error) {
	args := m.Called(ctx, handle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileStore) Delete(ctx context.Context, handle string) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}
