package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage implements BlobStorage on the local filesystem.
// Meant for development only: "presigned" URLs are plain paths without
// any signature or expiry enforcement.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg Config) (*LocalStorage, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "./burns-data"
	}

	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{basePath: cfg.BasePath}, nil
}

// PresignUpload returns a local pseudo-handle for the object
func (s *LocalStorage) PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	// Make sure the parent directory exists so the client PUT can land
	fullPath := filepath.Join(s.basePath, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	return fmt.Sprintf("/blobs/%s", key), nil
}

// PresignDownload returns a local pseudo-handle for the object
func (s *LocalStorage) PresignDownload(ctx context.Context, key, fileName string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("/blobs/%s?filename=%s", key, url.QueryEscape(fileName)), nil
}

// Delete removes the file; a missing file is not an error
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath := filepath.Join(s.basePath, key)

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in local storage
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.basePath, key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
