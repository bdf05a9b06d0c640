package jsonstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/idilsaglam/tada/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Missing(t *testing.T) {
	s := New(t.TempDir())
	_, err := s.Get(context.Background(), "tasks")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetGet_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	s := New(dir)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tasks", []byte(`[{"id":"a"}]`)))
	got, err := s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(got))
	assert.FileExists(t, filepath.Join(dir, "tasks.json"))
}

func TestSet_Overwrites(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "tasks", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "tasks", []byte(`[2]`)))
	got, err := s.Get(ctx, "tasks")
	require.NoError(t, err)
	assert.JSONEq(t, `[2]`, string(got))
}

func TestSet_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Set(context.Background(), "tasks", []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tasks.json", entries[0].Name())
}

func TestSet_NonJSONWrittenVerbatim(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "blob", []byte("not json")))
	got, err := s.Get(ctx, "blob")
	require.NoError(t, err)
	assert.Equal(t, "not json", string(got))
}

func TestInvalidKey(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()
	assert.ErrorIs(t, s.Set(ctx, "../escape", []byte("x")), store.ErrInvalidKey)
	_, err := s.Get(ctx, "")
	assert.ErrorIs(t, err, store.ErrInvalidKey)
}

func TestClosed(t *testing.T) {
	s := New(t.TempDir())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Set(context.Background(), "tasks", []byte("[]")), store.ErrClosed)
}

func TestCanceledContext(t *testing.T) {
	s := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Set(ctx, "tasks", []byte("[]")), context.Canceled)
}
