package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"intake/internal/domain"
)

// FileStore keeps uploaded documents as files in one directory.
type FileStore struct {
	dir     string
	ownsDir bool
}

// NewFileStore stores files under dir, creating it if needed. An empty dir
// allocates a private temp directory that Close removes.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		tmp, err := os.MkdirTemp("", "intake-uploads-*")
		if err != nil {
			return nil, fmt.Errorf("creating temp dir: %w", err)
		}
		return &FileStore{dir: tmp, ownsDir: true}, nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Put(ctx context.Context, name, _ string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	handle := uuid.New().String() + strings.ToLower(filepath.Ext(filepath.Base(name)))

	f, err := os.OpenFile(filepath.Join(s.dir, handle), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", handle, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("writing %s: %w", handle, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("closing %s: %w", handle, err)
	}
	return handle, nil
}

func (s *FileStore) Get(ctx context.Context, handle string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok := s.path(handle)
	if !ok {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", handle, err)
	}
	return data, nil
}

// Delete removes a stored file. Unknown handles are not an error.
func (s *FileStore) Delete(_ context.Context, handle string) error {
	path, ok := s.path(handle)
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", handle, err)
	}
	return nil
}

// Close removes the directory when the store created it.
func (s *FileStore) Close() error {
	if !s.ownsDir {
		return nil
	}
	return os.RemoveAll(s.dir)
}

// path confines handles to the store directory.
func (s *FileStore) path(handle string) (string, bool) {
	if handle == "" || handle != filepath.Base(handle) || handle == "." || handle == ".." {
		return "", false
	}
	return filepath.Join(s.dir, handle), true
}
