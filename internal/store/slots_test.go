package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SlotStore {
	t.Helper()
	s, err := Open(DriverModernc, filepath.Join(t.TempDir(), "nested", "terrefvg.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSlotStore_GetPut(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "visitedFarms")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "visitedFarms", `["a"]`))
	require.NoError(t, s.Put(ctx, "visitedFarms", `["a","b"]`))
	require.NoError(t, s.Put(ctx, "theme", "dark"))

	v, ok, err := s.Get(ctx, "visitedFarms")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["a","b"]`, v)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"theme", "visitedFarms"}, keys)
}

func TestSlotStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "terrefvg.db")
	ctx := context.Background()

	s, err := Open("", path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.NoError(t, s.Close())

	s, err = Open(DriverModernc, path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", v)
	assert.Equal(t, path, s.Path())
}

func TestSlotStore_Closed(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, _, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Put(context.Background(), "k", "v"), ErrClosed)
	_, err = s.Keys(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", filepath.Join(t.TempDir(), "x.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported sqlite driver")
}

func TestOpen_CgoDriver(t *testing.T) {
	s, err := Open(DriverMattn, filepath.Join(t.TempDir(), "cgo.db"))
	if err != nil {
		t.Skipf("sqlite3 driver unavailable in this build: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "k", "v"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}
