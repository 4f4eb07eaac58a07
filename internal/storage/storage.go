package storage

import (
	"context"
	"fmt"
	"time"
)

// BlobStorage defines the narrow interface the burn lifecycle needs from
// an object store. The service never sees file bytes: callers upload and
// download directly through time-limited presigned handles.
type BlobStorage interface {
	// PresignUpload returns a time-limited URL the client can PUT the file to
	PresignUpload(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)

	// PresignDownload returns a time-limited URL serving the object as an
	// attachment with the given file name
	PresignDownload(ctx context.Context, key, fileName string, expiry time.Duration) (string, error)

	// Delete irreversibly removes the object. Deleting a key that does not
	// exist is not an error: destruction must tolerate partial prior failures.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object is present under the key
	Exists(ctx context.Context, key string) (bool, error)
}

// Config holds storage configuration
type Config struct {
	Type      string // local, s3, cloudflare_r2
	BasePath  string // For local storage
	Bucket    string // For S3/R2
	Region    string // For S3
	AccessKey string // For S3/R2
	SecretKey string // For S3/R2
	Endpoint  string // For R2 or custom S3
}

// NewBlobStorage creates a new storage instance based on configuration
func NewBlobStorage(cfg Config) (BlobStorage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
