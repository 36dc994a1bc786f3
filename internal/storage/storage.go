// Package storage defines where build artifacts are written.
// The build orchestrator only sees the Sink interface, so the same run can
// target the local filesystem, a GCS bucket, or memory in tests.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var (
	// ErrEmptyPath is returned when an object path is blank.
	ErrEmptyPath = errors.New("object path is required")
	// ErrPathTraversal is returned when a path escapes the sink root.
	ErrPathTraversal = errors.New("path traversal detected")
)

// Content types for the artifacts the build writes.
const (
	ContentTypeHTML = "text/html; charset=utf-8"
	ContentTypeXML  = "application/xml"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Sink receives build artifacts.
type Sink interface {
	// EnsureDir makes sure dir exists under the sink root.
	EnsureDir(ctx context.Context, dir string) error
	// PutObject writes r to objectPath and returns a URI for the stored object.
	PutObject(ctx context.Context, objectPath string, contentType string, r io.Reader) (string, error)
}

// CleanPath validates a slash-separated relative path and returns its clean form.
// Absolute paths and paths that climb above the root are rejected.
func CleanPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", ErrEmptyPath
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", ErrPathTraversal
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrPathTraversal
	}
	return clean, nil
}
