package devicekey_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpfill/pkg/devicekey"
	"github.com/dmitrymomot/otpfill/pkg/kvstore"
)

const storageKey = "otpfill_device_encryption_key"

// plainStore hides SetNX so the non-atomic create path is exercised.
type plainStore struct {
	kvstore.Store
}

type failingStore struct {
	kvstore.Store
	err error
}

func (s failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, s.err
}

func sealOpen(t *testing.T, ek *devicekey.EncryptionKey, dk *devicekey.DecryptionKey) {
	t.Helper()

	nonce, err := ek.NewNonce()
	require.NoError(t, err)
	require.Len(t, nonce, 12)

	ct, err := ek.Seal(nonce, []byte("JBSWY3DPEHPK3PXP"))
	require.NoError(t, err)
	assert.Len(t, ct, len("JBSWY3DPEHPK3PXP")+ek.Overhead())

	pt, err := dk.Open(nonce, ct)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", string(pt))
}

func TestManager_EncryptionKey(t *testing.T) {
	t.Parallel()

	t.Run("creates once and reuses", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := kvstore.NewMemoryStore()
		m := devicekey.NewManager(store, storageKey)

		exists, err := m.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		ek1, err := m.EncryptionKey(ctx)
		require.NoError(t, err)

		stored, err := store.Get(ctx, storageKey)
		require.NoError(t, err)
		assert.Len(t, stored, devicekey.KeySize)

		ek2, err := m.EncryptionKey(ctx)
		require.NoError(t, err)

		again, err := store.Get(ctx, storageKey)
		require.NoError(t, err)
		assert.Equal(t, stored, again)

		dk, err := m.DecryptionKey(ctx)
		require.NoError(t, err)
		sealOpen(t, ek1, dk)
		sealOpen(t, ek2, &ek1.DecryptionKey)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("non-atomic store", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		mem := kvstore.NewMemoryStore()
		m := devicekey.NewManager(plainStore{mem}, storageKey)

		ek, err := m.EncryptionKey(ctx)
		require.NoError(t, err)

		dk, err := m.DecryptionKey(ctx)
		require.NoError(t, err)
		sealOpen(t, ek, dk)
	})

	t.Run("concurrent callers share one key", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := kvstore.NewMemoryStore()
		m := devicekey.NewManager(store, storageKey)

		const workers = 16
		keys := make([]*devicekey.EncryptionKey, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ek, err := m.EncryptionKey(ctx)
				assert.NoError(t, err)
				keys[i] = ek
			}(i)
		}
		wg.Wait()

		dk, err := m.DecryptionKey(ctx)
		require.NoError(t, err)
		for _, ek := range keys {
			require.NotNil(t, ek)
			sealOpen(t, ek, dk)
		}
	})

	t.Run("second manager adopts existing key", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := kvstore.NewMemoryStore()

		ek, err := devicekey.NewManager(store, storageKey).EncryptionKey(ctx)
		require.NoError(t, err)

		dk, err := devicekey.NewManager(store, storageKey).DecryptionKey(ctx)
		require.NoError(t, err)
		sealOpen(t, ek, dk)
	})

	t.Run("store failure is not treated as absence", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("connection refused")
		m := devicekey.NewManager(failingStore{Store: kvstore.NewMemoryStore(), err: boom}, storageKey)

		_, err := m.EncryptionKey(context.Background())
		require.ErrorIs(t, err, devicekey.ErrFailedToLoadKey)
		assert.ErrorIs(t, err, boom)
	})
}

func TestManager_DecryptionKey(t *testing.T) {
	t.Parallel()

	t.Run("missing key is an error and creates nothing", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		store := kvstore.NewMemoryStore()
		m := devicekey.NewManager(store, storageKey)

		_, err := m.DecryptionKey(ctx)
		require.ErrorIs(t, err, devicekey.ErrKeyNotFound)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("accepts json integer array", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		raw := make([]byte, devicekey.KeySize)
		_, err := rand.Read(raw)
		require.NoError(t, err)

		ints := make([]int, len(raw))
		for i, b := range raw {
			ints[i] = int(b)
		}
		encoded, err := json.Marshal(ints)
		require.NoError(t, err)

		legacyStore := kvstore.NewMemoryStore()
		require.NoError(t, legacyStore.Set(ctx, storageKey, encoded))
		rawStore := kvstore.NewMemoryStore()
		require.NoError(t, rawStore.Set(ctx, storageKey, raw))

		ek, err := devicekey.NewManager(rawStore, storageKey).EncryptionKey(ctx)
		require.NoError(t, err)
		dk, err := devicekey.NewManager(legacyStore, storageKey).DecryptionKey(ctx)
		require.NoError(t, err)
		sealOpen(t, ek, dk)
	})

	t.Run("rejects malformed stored keys", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			stored []byte
		}{
			{"too short", make([]byte, 16)},
			{"too long", make([]byte, 33)},
			{"bad json", []byte("[1,2,3")},
			{"short array", []byte("[1,2,3]")},
			{"out of range", []byte("[256,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0]")},
			{"text", []byte("not-a-key-not-a-key-not-a-key-not-a-key")},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				ctx := context.Background()
				store := kvstore.NewMemoryStore()
				require.NoError(t, store.Set(ctx, storageKey, tt.stored))

				m := devicekey.NewManager(store, storageKey)
				_, err := m.DecryptionKey(ctx)
				assert.ErrorIs(t, err, devicekey.ErrInvalidDeviceKey)

				_, err = m.EncryptionKey(ctx)
				assert.ErrorIs(t, err, devicekey.ErrInvalidDeviceKey)
			})
		}
	})
}

func TestDecryptionKey_Open(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := devicekey.NewManager(kvstore.NewMemoryStore(), storageKey)
	ek, err := m.EncryptionKey(ctx)
	require.NoError(t, err)

	nonce, err := ek.NewNonce()
	require.NoError(t, err)
	ct, err := ek.Seal(nonce, []byte("secret"))
	require.NoError(t, err)

	_, err = ek.Open(nonce[:8], ct)
	assert.Error(t, err)

	ct[0] ^= 0x01
	_, err = ek.Open(nonce, ct)
	assert.Error(t, err)

	_, err = ek.Seal(nonce[:4], []byte("x"))
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	t.Parallel()
	a, err := devicekey.GenerateKey()
	require.NoError(t, err)
	b, err := devicekey.GenerateKey()
	require.NoError(t, err)
	assert.Len(t, a, devicekey.KeySize)
	assert.NotEqual(t, a, b)
}
