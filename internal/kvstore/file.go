// ABOUTME: JSON file-backed key-value store for session and display preferences
// ABOUTME: Loads the whole map on open and rewrites the file atomically on mutation

package kvstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists a string map as a single JSON file. It is intended
// for low-sensitivity session and display state; values are stored in the
// clear. Safe for concurrent use within one process.
type FileStore struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	data map[string]string
}

// NewFileStore opens (or creates) a JSON key-value store at the given path.
// Parent directories are created if needed. A missing file is treated as
// an empty store.
func NewFileStore(path string) (*FileStore, error) {
	logger := slog.Default().With("component", "kvstore", "path", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	s := &FileStore{
		path:   path,
		logger: logger,
		data:   make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			// Corrupt file: fail soft, start empty. The session store is
			// display state only and the app must stay usable.
			logger.Warn("store file is corrupt, starting empty", "error", err)
			s.data = make(map[string]string)
		}
	}

	return s, nil
}

// Write sets a key and persists the store.
func (s *FileStore) Write(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.flush()
}

// Read returns the value for a key. A missing key returns ok=false and no error.
func (s *FileStore) Read(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok, nil
}

// Delete removes a key and persists the store. Deleting a missing key is a no-op.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// DeleteAll removes every key and persists the empty store.
func (s *FileStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string]string)
	return s.flush()
}

// flush rewrites the backing file. Callers must hold s.mu.
// Writes to a temp file then renames so a crash never leaves a torn file.
func (s *FileStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("writing store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing store file: %w", err)
	}
	return nil
}

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)
