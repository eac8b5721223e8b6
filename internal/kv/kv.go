// Package kv provides the single-key blob storage that backs the history
// store. Backends: file (one file per key), sqlite and memory.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("kv: key not found")

// Blob stores opaque values by key.
type Blob interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates a Blob for the named backend rooted at dataDir.
func Open(backend, dataDir string) (Blob, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileBlob(dataDir)
	case BackendSQLite:
		return NewSQLiteBlob(sqlitePath(dataDir))
	case BackendMemory:
		return NewMemoryBlob(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (must be file, sqlite or memory)", backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("kv: empty key")
	}
	return nil
}
