// Package store defines the durable key-value storage the task list is
// persisted through. Each key holds one opaque blob; callers always write
// whole values, never partial records.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
	ErrClosed     = errors.New("store closed")
)

// Store is a blob-per-key durable store. Implementations serialize
// physical writes, so the last Set to complete is the value a later Get
// observes.
type Store interface {
	// Get returns a copy of the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value for key.
	Set(ctx context.Context, key string, value []byte) error

	Close() error
}

// ValidateKey rejects keys that cannot be used as a file name or bucket key.
func ValidateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\ `) || key == "." || key == ".." {
		return ErrInvalidKey
	}
	return nil
}
