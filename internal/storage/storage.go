// Package storage provides the key/value store behind extension storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/trustlens/internal/model"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name
var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage defines the interface for extension-local storage.
// Values are opaque bytes; the file backend additionally requires them to be JSON.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Open builds the storage described by cfg. Persistent backends are fronted
// by a memory layer.
func Open(cfg model.HistoryConfig) (Storage, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStorage(), nil
	case BackendFile:
		path, err := ExpandPath(cfg.Path)
		if err != nil {
			return nil, err
		}
		return NewLayeredStorage(NewMemoryStorage(), NewFileStorage(path)), nil
	case BackendSQLite:
		path, err := ExpandPath(cfg.Path)
		if err != nil {
			return nil, err
		}
		db, err := OpenSQLiteStorage(path)
		if err != nil {
			return nil, err
		}
		return NewLayeredStorage(NewMemoryStorage(), db), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// ExpandPath resolves a leading "~" to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
