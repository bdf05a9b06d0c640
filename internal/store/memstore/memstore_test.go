package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/idilsaglam/tada/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Get(ctx, "tasks")
	assert.ErrorIs(t, err, store.ErrNotFound)

	in := []byte("hello")
	require.NoError(t, s.Set(ctx, "tasks", in))
	in[0] = 'X'

	got, err := s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
	got[0] = 'Y'

	again, _ := s.Get(ctx, "tasks")
	assert.Equal(t, "hello", string(again))
	assert.Equal(t, 1, s.Writes())
}

func TestMemStore_Failure(t *testing.T) {
	s := New()
	boom := errors.New("disk full")
	s.SetFailure(boom)
	assert.ErrorIs(t, s.Set(context.Background(), "tasks", []byte("x")), boom)
	assert.Equal(t, 0, s.Writes())

	s.SetFailure(nil)
	assert.NoError(t, s.Set(context.Background(), "tasks", []byte("x")))
}

func TestMemStore_Closed(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())
	_, err := s.Get(context.Background(), "tasks")
	assert.ErrorIs(t, err, store.ErrClosed)
}
