package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/pkg/storage"
)

func TestNewLocalStorage(t *testing.T) {
	t.Parallel()

	t.Run("requires base dir", func(t *testing.T) {
		t.Parallel()

		_, err := storage.NewLocalStorage("", "/assets")
		assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	})

	t.Run("creates base dir", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "assets")
		_, err := storage.NewLocalStorage(dir, "/assets")
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestLocalStorageSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("saves and reports metadata", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := storage.NewLocalStorage(dir, "/assets")
		require.NoError(t, err)

		obj, err := s.Save(ctx, "posts/slug/lead.jpg", strings.NewReader("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)

		assert.Equal(t, "posts/slug/lead.jpg", obj.Path)
		assert.Equal(t, int64(len("jpeg-bytes")), obj.Size)
		assert.Equal(t, "image/jpeg", obj.ContentType)
		assert.Equal(t, "/assets/posts/slug/lead.jpg", obj.URL)

		data, err := os.ReadFile(filepath.Join(dir, "posts", "slug", "lead.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(data))
		assert.True(t, s.Exists(ctx, "posts/slug/lead.jpg"))
	})

	t.Run("overwrites existing object", func(t *testing.T) {
		t.Parallel()

		s, err := storage.NewLocalStorage(t.TempDir(), "/assets")
		require.NoError(t, err)

		_, err = s.Save(ctx, "a.txt", strings.NewReader("one"), "text/plain")
		require.NoError(t, err)
		obj, err := s.Save(ctx, "a.txt", strings.NewReader("two"), "text/plain")
		require.NoError(t, err)
		assert.Equal(t, int64(3), obj.Size)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		t.Parallel()

		s, err := storage.NewLocalStorage(t.TempDir(), "/assets")
		require.NoError(t, err)

		_, err = s.Save(ctx, "../escape.txt", strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
	})
}

func TestLocalStorageDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir(), "/assets")
	require.NoError(t, err)

	_, err = s.Save(ctx, "gone.txt", strings.NewReader("x"), "text/plain")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "gone.txt"))
	assert.False(t, s.Exists(ctx, "gone.txt"))

	assert.ErrorIs(t, s.Delete(ctx, "gone.txt"), storage.ErrObjectNotFound)
}

func TestLocalStorageURL(t *testing.T) {
	t.Parallel()

	s, err := storage.NewLocalStorage(t.TempDir(), "https://cdn.example.com/assets")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/assets/posts/lead.jpg", s.URL("posts/lead.jpg"))
	assert.Empty(t, s.URL("../escape"))
}
