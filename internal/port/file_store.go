package port

import (
	"context"
	"io"
)

// FileStore holds uploaded documents for the lifetime of one pipeline run.
type FileStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	Get(ctx context.Context, handle string) ([]byte, error)
	Delete(ctx context.Context, handle string) error
}
