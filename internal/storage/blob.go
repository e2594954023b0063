// Package storage provides blob persistence for uploaded files and
// metadata persistence for the records that describe them.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// BlobStore persists raw file bytes under a caller-chosen key.
type BlobStore interface {
	// Put writes data under key and returns the stored path.
	Put(ctx context.Context, key string, data []byte) (string, error)

	// Get reads the blob stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
}

// LocalStore is a BlobStore backed by a directory on the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob store: empty root directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob store: create root: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// Put writes data to root/key. Key segments are cleaned so a hostile key
// cannot escape the root directory.
func (s *LocalStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("blob store: create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("blob store: write %s: %w", key, err)
	}
	return path, nil
}

// Get reads the blob stored under key.
func (s *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("blob store: read %s: %w", key, err)
	}
	return data, nil
}

// resolve maps a key to an absolute path under the root, rejecting keys
// that would traverse outside it.
func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	path := filepath.Join(s.root, clean)
	if !strings.HasPrefix(path, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("blob store: invalid key %q", key)
	}
	return path, nil
}
