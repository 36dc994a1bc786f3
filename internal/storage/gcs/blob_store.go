// Package gcs publishes build artifacts to a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	appstorage "github.com/JakeFAU/mission-site/internal/storage"
)

// Config captures the bucket layout.
type Config struct {
	Bucket string
	// Prefix is prepended to every object name, e.g. "site/".
	Prefix string
	// CacheControl is set on uploaded objects when non-empty.
	CacheControl string
}

// BlobStore writes artifacts to a configured GCS bucket.
type BlobStore struct {
	client       *storage.Client
	bucket       string
	prefix       string
	cacheControl string
}

var _ appstorage.Sink = (*BlobStore)(nil)

// New creates a GCS-backed blob store.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	return &BlobStore{
		client:       client,
		bucket:       cfg.Bucket,
		prefix:       prefix,
		cacheControl: cfg.CacheControl,
	}, nil
}

// EnsureDir is a no-op: object stores have no directories.
func (s *BlobStore) EnsureDir(_ context.Context, dir string) error {
	if dir == "" {
		return nil
	}
	if _, err := appstorage.CleanPath(dir); err != nil {
		return fmt.Errorf("%q: %w", dir, err)
	}
	return nil
}

// PutObject uploads data to the bucket and returns a gs:// URI.
func (s *BlobStore) PutObject(ctx context.Context, objectPath string, contentType string, r io.Reader) (string, error) {
	clean, err := appstorage.CleanPath(objectPath)
	if err != nil {
		return "", fmt.Errorf("%q: %w", objectPath, err)
	}
	name := clean
	if s.prefix != "" {
		name = path.Join(s.prefix, clean)
	}

	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if s.cacheControl != "" {
		writer.CacheControl = s.cacheControl
	}
	if _, err := io.Copy(writer, r); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("copy object %s: %w (close writer: %v)", name, err, closeErr)
		}
		return "", fmt.Errorf("copy object %s: %w", name, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close writer for %s: %w", name, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}
