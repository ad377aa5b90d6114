package envelope

import (
	"context"
	"errors"

	"github.com/dmitrymomot/otpfill/pkg/devicekey"
)

// KeySource supplies the device key. *devicekey.Manager implements it.
type KeySource interface {
	EncryptionKey(ctx context.Context) (*devicekey.EncryptionKey, error)
	DecryptionKey(ctx context.Context) (*devicekey.DecryptionKey, error)
}

// Cipher encrypts secrets under the device key with AES-256-GCM.
type Cipher struct {
	keys KeySource
}

// NewCipher creates a Cipher.
func NewCipher(keys KeySource) *Cipher {
	return &Cipher{keys: keys}
}

// Encrypt seals plaintext with a fresh random nonce, creating the device key
// if none exists yet.
func (c *Cipher) Encrypt(ctx context.Context, plaintext string) (Envelope, error) {
	key, err := c.keys.EncryptionKey(ctx)
	if err != nil {
		return Envelope{}, errors.Join(ErrEncryptionFailed, err)
	}
	nonce, err := key.NewNonce()
	if err != nil {
		return Envelope{}, errors.Join(ErrEncryptionFailed, err)
	}
	data, err := key.Seal(nonce, []byte(plaintext))
	if err != nil {
		return Envelope{}, errors.Join(ErrEncryptionFailed, err)
	}
	return Envelope{Nonce: nonce, Data: data}, nil
}

// Decrypt opens an envelope. A missing device key is returned as
// devicekey.ErrKeyNotFound; any authentication or format fault is
// ErrDecryptionFailed.
func (c *Cipher) Decrypt(ctx context.Context, env Envelope) (string, error) {
	if err := env.Validate(); err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	key, err := c.keys.DecryptionKey(ctx)
	if err != nil {
		return "", err
	}
	plaintext, err := key.Open(env.Nonce, env.Data)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// EncryptBytes encrypts plaintext and returns the stored JSON form.
func (c *Cipher) EncryptBytes(ctx context.Context, plaintext string) ([]byte, error) {
	env, err := c.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, err
	}
	b, err := env.Marshal()
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}
	return b, nil
}

// DecryptBytes parses a stored envelope and decrypts it.
func (c *Cipher) DecryptBytes(ctx context.Context, stored []byte) (string, error) {
	env, err := Parse(stored)
	if err != nil {
		return "", errors.Join(ErrDecryptionFailed, err)
	}
	return c.Decrypt(ctx, env)
}
