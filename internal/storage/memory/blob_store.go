// Package memory keeps build artifacts in memory for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/JakeFAU/mission-site/internal/storage"
)

// Object is one stored artifact.
type Object struct {
	Data        []byte
	ContentType string
}

// BlobStore stores artifacts in-memory and returns pseudo URIs.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	dirs    map[string]struct{}
}

var _ storage.Sink = (*BlobStore)(nil)

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		objects: make(map[string]Object),
		dirs:    make(map[string]struct{}),
	}
}

// EnsureDir records the directory.
func (s *BlobStore) EnsureDir(_ context.Context, dir string) error {
	if dir != "" {
		clean, err := storage.CleanPath(dir)
		if err != nil {
			return fmt.Errorf("%q: %w", dir, err)
		}
		dir = clean
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[dir] = struct{}{}
	return nil
}

// PutObject persists a copy of the content and returns a memory:// URI.
func (s *BlobStore) PutObject(_ context.Context, objectPath string, contentType string, data io.Reader) (string, error) {
	clean, err := storage.CleanPath(objectPath)
	if err != nil {
		return "", fmt.Errorf("%q: %w", objectPath, err)
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read object data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[clean] = Object{Data: append([]byte(nil), content...), ContentType: contentType}
	return "memory://" + clean, nil
}

// Get returns a copy of the object stored at objectPath.
func (s *BlobStore) Get(objectPath string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[objectPath]
	if !ok {
		return Object{}, false
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return obj, true
}

// Paths lists stored object paths in lexical order.
func (s *BlobStore) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.objects))
	for p := range s.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// HasDir reports whether EnsureDir was called for dir.
func (s *BlobStore) HasDir(dir string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.dirs[dir]
	return ok
}
