package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalStore writes proof blobs to a directory. Used in development and
// as a fallback when no object store is configured.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, data []byte, name string) (string, error) {
	dest := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write proof blob: %w", err)
	}
	return dest, nil
}
