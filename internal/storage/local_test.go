package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)
	return s
}

func TestLocalStoragePresign(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	uploadURL, err := s.PresignUpload(ctx, "burns/abc", "application/pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "/blobs/burns/abc", uploadURL)

	downloadURL, err := s.PresignDownload(ctx, "burns/abc", "my report.pdf", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "/blobs/burns/abc?filename=my+report.pdf", downloadURL)
}

func TestLocalStorageDelete(t *testing.T) {
	s := newTestLocalStorage(t)
	ctx := context.Background()

	key := "burns/to-delete"
	fullPath := filepath.Join(s.basePath, key)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
	require.NoError(t, os.WriteFile(fullPath, []byte("payload"), 0644))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, key))

	exists, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	// удаление отсутствующего объекта не ошибка
	assert.NoError(t, s.Delete(ctx, key))
	assert.NoError(t, s.Delete(ctx, "burns/never-existed"))
}
