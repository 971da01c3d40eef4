package local_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/domain"
	"intake/internal/storage/local"
)

func TestFileStore_PutGetDelete(t *testing.T) {
	store, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	handle, err := store.Put(ctx, "My Resume.PDF", domain.MediaTypePDF, strings.NewReader("%PDF-1.4 data"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(handle, ".pdf"))
	assert.NotContains(t, handle, "My Resume")

	data, err := store.Get(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(data))

	require.NoError(t, store.Delete(ctx, handle))
	_, err = store.Get(ctx, handle)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, handle))
}

func TestFileStore_HandlesAreUnique(t *testing.T) {
	store, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)

	h1, err := store.Put(context.Background(), "cv.txt", domain.MediaTypeText, strings.NewReader("a"))
	require.NoError(t, err)
	h2, err := store.Put(context.Background(), "cv.txt", domain.MediaTypeText, strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("secret"), 0o600))
	t.Cleanup(func() { _ = os.Remove(outside) })

	store, err := local.NewFileStore(dir)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "../secret.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, store.Delete(context.Background(), "../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestFileStore_TempDirRemovedOnClose(t *testing.T) {
	store, err := local.NewFileStore("")
	require.NoError(t, err)
	dir := store.Dir()

	_, err = store.Put(context.Background(), "a.txt", domain.MediaTypeText, strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CancelledContext(t *testing.T) {
	store, err := local.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Put(ctx, "a.txt", domain.MediaTypeText, strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
