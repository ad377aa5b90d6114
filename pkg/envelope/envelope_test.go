package envelope_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/otpfill/pkg/devicekey"
	"github.com/dmitrymomot/otpfill/pkg/envelope"
	"github.com/dmitrymomot/otpfill/pkg/kvstore"
)

const keyID = "otpfill_device_encryption_key"

func newCipher(t *testing.T) (*envelope.Cipher, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	return envelope.NewCipher(devicekey.NewManager(store, keyID)), store
}

func TestCipher_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		plaintext string
	}{
		{"totp seed", "JBSWY3DPEHPK3PXP"},
		{"empty", ""},
		{"unicode", "pässwörd-密码"},
		{"long", strings.Repeat("x", 4096)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			c, _ := newCipher(t)

			env, err := c.Encrypt(ctx, tt.plaintext)
			require.NoError(t, err)
			assert.Len(t, env.Nonce, envelope.NonceSize)
			assert.Len(t, env.Data, len(tt.plaintext)+envelope.TagSize)

			got, err := c.Decrypt(ctx, env)
			require.NoError(t, err)
			assert.Equal(t, tt.plaintext, got)
		})
	}
}

func TestCipher_EncryptCreatesKeyOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, store := newCipher(t)

	_, err := c.Encrypt(ctx, "a")
	require.NoError(t, err)
	first, err := store.Get(ctx, keyID)
	require.NoError(t, err)

	_, err = c.Encrypt(ctx, "b")
	require.NoError(t, err)
	second, err := store.Get(ctx, keyID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCipher_DistinctNonces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _ := newCipher(t)

	a, err := c.Encrypt(ctx, "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)
	b, err := c.Encrypt(ctx, "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Data, b.Data)
}

func TestCipher_TamperDetected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _ := newCipher(t)

	env, err := c.Encrypt(ctx, "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	flip := func(src []byte, bit int) []byte {
		out := append([]byte(nil), src...)
		out[bit/8] ^= 1 << (bit % 8)
		return out
	}

	for bit := range len(env.Data) * 8 {
		tampered := envelope.Envelope{Nonce: env.Nonce, Data: flip(env.Data, bit)}
		got, err := c.Decrypt(ctx, tampered)
		require.ErrorIs(t, err, envelope.ErrDecryptionFailed, "data bit %d", bit)
		require.Empty(t, got)
	}

	for bit := range len(env.Nonce) * 8 {
		tampered := envelope.Envelope{Nonce: flip(env.Nonce, bit), Data: env.Data}
		_, err := c.Decrypt(ctx, tampered)
		require.ErrorIs(t, err, envelope.ErrDecryptionFailed, "nonce bit %d", bit)
	}
}

func TestCipher_WrongKey(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a, _ := newCipher(t)
	b, _ := newCipher(t)

	env, err := a.Encrypt(ctx, "secret")
	require.NoError(t, err)

	// b has no key yet.
	_, err = b.Decrypt(ctx, env)
	require.ErrorIs(t, err, devicekey.ErrKeyNotFound)
	assert.NotErrorIs(t, err, envelope.ErrDecryptionFailed)

	_, err = b.Encrypt(ctx, "other")
	require.NoError(t, err)

	_, err = b.Decrypt(ctx, env)
	assert.ErrorIs(t, err, envelope.ErrDecryptionFailed)
}

func TestCipher_Bytes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _ := newCipher(t)

	stored, err := c.EncryptBytes(ctx, "JBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	var raw map[string][]int
	require.NoError(t, json.Unmarshal(stored, &raw))
	assert.Len(t, raw["iv"], envelope.NonceSize)
	assert.Len(t, raw["data"], len("JBSWY3DPEHPK3PXP")+envelope.TagSize)

	got, err := c.DecryptBytes(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", got)
}

func TestCipher_DecryptBytesMalformed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c, _ := newCipher(t)
	_, err := c.Encrypt(ctx, "warm up key")
	require.NoError(t, err)

	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"not json", "JBSWY3DPEHPK3PXP"},
		{"wrong shape", `{"iv":"abc","data":"def"}`},
		{"missing iv", `{"data":[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16]}`},
		{"short iv", `{"iv":[1,2,3],"data":[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16]}`},
		{"short data", `{"iv":[1,2,3,4,5,6,7,8,9,10,11,12],"data":[1,2,3]}`},
		{"out of range", `{"iv":[1,2,3,4,5,6,7,8,9,10,11,300],"data":[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16]}`},
		{"garbage ciphertext", `{"iv":[1,2,3,4,5,6,7,8,9,10,11,12],"data":[1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16,17]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := c.DecryptBytes(ctx, []byte(tt.stored))
			require.ErrorIs(t, err, envelope.ErrDecryptionFailed)
			assert.Empty(t, got)
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	stored := `{"iv":[0,1,2,3,4,5,6,7,8,9,10,255],"data":[16,15,14,13,12,11,10,9,8,7,6,5,4,3,2,1,0]}`
	env, err := envelope.Parse([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 255}, env.Nonce)
	assert.Len(t, env.Data, 17)

	out, err := env.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, stored, string(out))

	_, err = envelope.Parse([]byte(`{"iv":[1],"data":[]}`))
	assert.ErrorIs(t, err, envelope.ErrInvalidEnvelope)

	_, err = envelope.Envelope{}.Marshal()
	assert.ErrorIs(t, err, envelope.ErrInvalidEnvelope)
}
