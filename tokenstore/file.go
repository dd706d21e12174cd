package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileStore persists the record as a JSON file, giving the same
// restart continuity the original web client got from localStorage.
type fileStore struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed token store at path.
func NewFile(path string) Store {
	return &fileStore{path: path}
}

// Save implements Store. The file is written with owner-only
// permissions since it holds live credentials.
func (s *fileStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o600)
}

// Load implements Store. A missing, unreadable or corrupt file loads
// as nil, nil: the cache being unavailable must never surface as an
// error to the chat flow.
func (s *fileStore) Load(ctx context.Context) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	return &rec, nil
}

// Clear implements Store.
func (s *fileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Close implements Store.
func (s *fileStore) Close() error {
	return nil
}
