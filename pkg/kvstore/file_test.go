package kvstore_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpfill/pkg/kvstore"
)

func TestFileStore_SharedBetweenInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	first, err := kvstore.NewFileStore(kvstore.FileConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "device", []byte{1, 2, 3}))

	second, err := kvstore.NewFileStore(kvstore.FileConfig{Path: path})
	require.NoError(t, err)
	got, err := second.Get(ctx, "device")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)

	ok, err := second.SetNX(ctx, "device", []byte{9})
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	assert.Equal(t, path, first.Path())
}

func TestFileStore_SetNXAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.json")

	const workers = 16
	var (
		wg  sync.WaitGroup
		won atomic.Int32
	)
	for i := range workers {
		s, err := kvstore.NewFileStore(kvstore.FileConfig{Path: path})
		require.NoError(t, err)

		wg.Add(1)
		go func(s *kvstore.FileStore, v byte) {
			defer wg.Done()
			ok, err := s.SetNX(ctx, "device", []byte{v})
			assert.NoError(t, err)
			if ok {
				won.Add(1)
			}
		}(s, byte(i))
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
}

func TestFileStore_Corrupted(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store, err := kvstore.NewFileStore(kvstore.FileConfig{Path: path})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, kvstore.ErrCorruptedStore)
}

func TestFileStore_EmptyFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := kvstore.NewFileStore(kvstore.FileConfig{Path: path})
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "k")
	assert.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestNewFileStore_InvalidConfig(t *testing.T) {
	t.Parallel()
	_, err := kvstore.NewFileStore(kvstore.FileConfig{})
	assert.ErrorIs(t, err, kvstore.ErrInvalidConfig)
}

func TestNewBoltStore_InvalidConfig(t *testing.T) {
	t.Parallel()
	_, err := kvstore.NewBoltStore(kvstore.BoltConfig{Path: filepath.Join(t.TempDir(), "x.db")})
	assert.ErrorIs(t, err, kvstore.ErrInvalidConfig)
}
