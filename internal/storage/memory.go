package storage

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStorage implements in-memory storage. Entries never expire.
type MemoryStorage struct {
	cache *gocache.Cache
}

// NewMemoryStorage creates a new memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a copy of the stored value
func (s *MemoryStorage) Get(_ context.Context, key string) ([]byte, bool, error) {
	if val, found := s.cache.Get(key); found {
		return clone(val.([]byte)), true, nil
	}
	return nil, false, nil
}

// Set stores a copy of value
func (s *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	s.cache.Set(key, clone(value), gocache.NoExpiration)
	return nil
}

// Delete removes a value
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Clear removes all values
func (s *MemoryStorage) Clear(_ context.Context) error {
	s.cache.Flush()
	return nil
}

// Close is a no-op
func (s *MemoryStorage) Close() error { return nil }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
