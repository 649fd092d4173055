package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oshokin/alarm-clock/internal/config"
)

// FileStore keeps each key as <dir>/<key>.json.
type FileStore struct {
	// dir is the directory holding the key files.
	dir string
	// mu serialises file access.
	mu sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store rooted at it.
func NewFileStore(dir string) (*FileStore, error) {
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	return &FileStore{
		dir: dir,
	}, nil
}

// Get reads the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	return contents, nil
}

// Set replaces the value stored under key. The write goes through a temporary
// file and a rename so a crash never leaves a truncated document.
func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, value, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}

	return nil
}

// Close is a no-op for files.
func (s *FileStore) Close() error {
	return nil
}

// path maps key to its file, rejecting keys that would escape the directory.
func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("%q: %w", key, errInvalidKey)
	}

	return filepath.Join(s.dir, key+".json"), nil
}
