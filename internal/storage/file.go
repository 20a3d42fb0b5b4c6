package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotJSON is returned when the file backend is asked to store non-JSON bytes
var ErrNotJSON = errors.New("value is not valid JSON")

// FileStorage keeps every key in a single JSON object on disk,
// the same shape extension local storage uses.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage creates a file-backed storage at path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Get retrieves a value from the storage file
func (s *FileStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, false, err
	}
	val, ok := items[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(val), true, nil
}

// Set stores a JSON value under key
func (s *FileStorage) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("set %q: %w", key, ErrNotJSON)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	items[key] = json.RawMessage(clone(value))
	return s.save(items)
}

// Delete removes a value from the storage file
func (s *FileStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.save(items)
}

// Clear removes the storage file
func (s *FileStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove storage file: %w", err)
	}
	return nil
}

// Close is a no-op
func (s *FileStorage) Close() error { return nil }

func (s *FileStorage) load() (map[string]json.RawMessage, error) {
	items := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse storage file: %w", err)
	}
	return items, nil
}

// save writes through a temp file so readers never observe a partial object
func (s *FileStorage) save(items map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
