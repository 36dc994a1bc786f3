// Package local writes build artifacts under a directory on disk.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JakeFAU/mission-site/internal/storage"
)

// Config captures the parameters for the filesystem sink.
type Config struct {
	// BaseDir is the output root, e.g. "dist".
	BaseDir string `mapstructure:"base_dir"`
}

// BlobStore writes artifacts to the local filesystem.
type BlobStore struct {
	baseDir string
}

var _ storage.Sink = (*BlobStore)(nil)

const (
	filePerm os.FileMode = 0o644
	dirPerm  os.FileMode = 0o755
)

// New creates the output root if needed and checks that it is writable.
func New(cfg Config) (*BlobStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}

	info, err := os.Stat(cfg.BaseDir)
	switch {
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(cfg.BaseDir, dirPerm); mkErr != nil {
			return nil, fmt.Errorf("create base directory: %w", mkErr)
		}
	case err != nil:
		return nil, fmt.Errorf("stat base directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("base directory %q is not a directory", cfg.BaseDir)
	}

	probe := filepath.Join(cfg.BaseDir, ".writable_test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("base directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}

	return &BlobStore{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

// BaseDir returns the output root.
func (s *BlobStore) BaseDir() string { return s.baseDir }

// EnsureDir creates dir (relative to the root) and its parents. An empty dir
// means the root itself.
func (s *BlobStore) EnsureDir(_ context.Context, dir string) error {
	full := s.baseDir
	if strings.TrimSpace(dir) != "" {
		var err error
		if full, err = s.resolve(dir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(full, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", full, err)
	}
	return nil
}

// PutObject writes data to a file under the root and returns a file:// URI.
func (s *BlobStore) PutObject(_ context.Context, objectPath string, _ string, data io.Reader) (string, error) {
	full, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return "", fmt.Errorf("create parent directories: %w", err)
	}
	content, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read object data: %w", err)
	}
	if err := os.WriteFile(full, content, filePerm); err != nil {
		return "", fmt.Errorf("write file %s: %w", full, err)
	}
	// The site is served by another user; WriteFile keeps the mode of an
	// existing file and applies the umask to a new one.
	if err := os.Chmod(full, filePerm); err != nil {
		return "", fmt.Errorf("chmod file %s: %w", full, err)
	}
	return "file://" + full, nil
}

func (s *BlobStore) resolve(objectPath string) (string, error) {
	clean, err := storage.CleanPath(objectPath)
	if err != nil {
		return "", fmt.Errorf("%q: %w", objectPath, err)
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", objectPath, storage.ErrPathTraversal)
	}
	return full, nil
}
