// Package memstore is an in-process store.Store. Useful for tests and for
// running without touching disk.
package memstore

import (
	"context"
	"sync"

	"github.com/idilsaglam/tada/internal/store"
)

type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// FailWith, when set, is returned by every Set. Tests use it to
	// simulate a broken disk.
	FailWith error
	writes   int
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Return a copy to prevent mutation
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return store.ErrClosed
	}
	if s.FailWith != nil {
		return s.FailWith
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	s.writes++
	return nil
}

// SetFailure changes FailWith under the store's lock.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	s.FailWith = err
	s.mu.Unlock()
}

// Writes reports how many Set calls succeeded.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
