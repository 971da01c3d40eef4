package port

import "context"

// TextExtractionBackend turns the bytes of one document format into raw text.
type TextExtractionBackend interface {
	Extract(ctx context.Context, data []byte, mediaType string) (string, error)
}
