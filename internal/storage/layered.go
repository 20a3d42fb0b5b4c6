package storage

import (
	"context"
	"errors"
)

// LayeredStorage implements a two-layer store (memory + persistent).
// Writes go through to both layers; reads promote persistent hits into memory.
type LayeredStorage struct {
	memory     Storage
	persistent Storage
}

// NewLayeredStorage creates a new layered storage
func NewLayeredStorage(memory, persistent Storage) *LayeredStorage {
	return &LayeredStorage{
		memory:     memory,
		persistent: persistent,
	}
}

// Get retrieves a value (checks memory first, then the persistent layer)
func (s *LayeredStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found, err := s.memory.Get(ctx, key); err == nil && found {
		return val, true, nil
	}

	val, found, err := s.persistent.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// Promote to memory
	_ = s.memory.Set(ctx, key, val)
	return val, true, nil
}

// Set stores a value in the persistent layer, then memory
func (s *LayeredStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := s.persistent.Set(ctx, key, value); err != nil {
		return err
	}
	return s.memory.Set(ctx, key, value)
}

// Delete removes a value from both layers
func (s *LayeredStorage) Delete(ctx context.Context, key string) error {
	return errors.Join(s.memory.Delete(ctx, key), s.persistent.Delete(ctx, key))
}

// Clear removes all values from both layers
func (s *LayeredStorage) Clear(ctx context.Context) error {
	return errors.Join(s.memory.Clear(ctx), s.persistent.Clear(ctx))
}

// Close closes both layers
func (s *LayeredStorage) Close() error {
	return errors.Join(s.memory.Close(), s.persistent.Close())
}
