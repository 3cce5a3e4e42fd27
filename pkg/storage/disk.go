// Package storage holds advert images. Two drivers are available:
//   - "local" writes under STORAGE_LOCAL_ROOT and serves from STORAGE_URL
//   - "s3"    any S3-compatible object store (AWS S3, MinIO, R2, Spaces)
package storage

import (
	"context"
	"time"
)

// Disk is the driver interface.
type Disk interface {
	// Put writes content to path, replacing any existing object.
	Put(ctx context.Context, path string, content []byte, contentType string) error

	// Get returns the full content of the object at path.
	Get(ctx context.Context, path string) ([]byte, error)

	Exists(ctx context.Context, path string) bool

	LastModified(ctx context.Context, path string) (time.Time, error)

	// URL returns the durable public URL for path.
	URL(path string) string

	// Delete removes path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error
}
