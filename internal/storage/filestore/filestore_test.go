package filestore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReadsScreenshots(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, screenshotsFolder), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, screenshotsFolder, "a.png"), []byte("png"), 0o600))

	store, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	p := store.ScreenshotPath("a.png")
	assert.Equal(t, "screenshots/a.png", p)

	data, err := store.ReadFile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = store.ReadFile(context.Background(), store.ScreenshotPath("missing.png"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestStore_RejectsEscapes(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "data")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret"), []byte("x"), 0o600))

	store, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.ReadFile(context.Background(), "../secret")
	assert.Error(t, err)
}

func TestStore_CanceledContext(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.ReadFile(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_MissingDir(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
