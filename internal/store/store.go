// Package store provides the local durable key-value store the persistence
// layer falls back to when no backend service is configured.
//
// Values are opaque JSON documents. Three implementations exist: an
// in-process map, a single JSON file on disk, and a PostgreSQL table.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/autoprep/internal/config"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed document store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the store is usable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StoreFile:
		return OpenFile(cfg.Path)
	case config.StorePostgres:
		return OpenPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Describe names the store for health reports.
func Describe(s Store) string {
	switch s.(type) {
	case *Memory:
		return "memory"
	case *File:
		return "file"
	case *Postgres:
		return "postgres"
	default:
		return "custom"
	}
}
