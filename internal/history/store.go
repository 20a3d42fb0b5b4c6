// Package history persists the bounded, newest-first log of verifications.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/storage"
)

// Key is the storage key holding the history array
const Key = "history"

// MaxEntries is the hard cap on retained entries
const MaxEntries = 20

// Store is the history log over extension storage.
// Append is a read-modify-write; the mutex makes it atomic within a process.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	limit   int
}

// NewStore creates a history store. The limit may lower the retention bound
// but never raise it above MaxEntries; a non-positive limit uses MaxEntries.
func NewStore(s storage.Storage, limit int) *Store {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}
	return &Store{storage: s, limit: limit}
}

// Limit returns the retention bound
func (s *Store) Limit() int {
	return s.limit
}

// Append inserts entry at the front and truncates to the limit
func (s *Store) Append(ctx context.Context, entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read(ctx)
	if err != nil {
		return err
	}

	entries = append([]model.HistoryEntry{entry}, entries...)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.storage.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// All returns the stored entries, newest first. A missing key is an empty history.
func (s *Store) All(ctx context.Context) ([]model.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// Clear drops every entry
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

func (s *Store) read(ctx context.Context) ([]model.HistoryEntry, error) {
	data, found, err := s.storage.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if !found || len(data) == 0 {
		return []model.HistoryEntry{}, nil
	}

	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}
