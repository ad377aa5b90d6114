package devicekey

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
)

// KeySize is the device key length: 256 bits for AES-256.
const KeySize = 32

// DecryptionKey can only open AES-256-GCM ciphertexts.
type DecryptionKey struct {
	aead cipher.AEAD
}

// EncryptionKey can both seal and open.
type EncryptionKey struct {
	DecryptionKey
}

func newDecryptionKey(raw []byte) (*DecryptionKey, error) {
	if len(raw) != KeySize {
		return nil, ErrInvalidDeviceKey
	}
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, errors.Join(ErrInvalidDeviceKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrInvalidDeviceKey, err)
	}
	return &DecryptionKey{aead: aead}, nil
}

func newEncryptionKey(raw []byte) (*EncryptionKey, error) {
	dk, err := newDecryptionKey(raw)
	if err != nil {
		return nil, err
	}
	return &EncryptionKey{DecryptionKey: *dk}, nil
}

// NonceSize is 12 bytes.
func (k *DecryptionKey) NonceSize() int { return k.aead.NonceSize() }

// Overhead is the 16-byte authentication tag length.
func (k *DecryptionKey) Overhead() int { return k.aead.Overhead() }

// Open authenticates and decrypts ciphertext (which carries the tag).
func (k *DecryptionKey) Open(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != k.aead.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}
	return k.aead.Open(nil, nonce, ciphertext, nil)
}

// Seal encrypts plaintext and appends the tag. The nonce must never repeat for this key.
func (k *EncryptionKey) Seal(nonce, plaintext []byte) ([]byte, error) {
	if len(nonce) != k.aead.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}
	return k.aead.Seal(nil, nonce, plaintext, nil), nil
}

// NewNonce draws a fresh random nonce.
func (k *EncryptionKey) NewNonce() ([]byte, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return nonce, nil
}

// GenerateKey creates 32 random bytes suitable for AES-256.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrFailedToGenerateKey, err)
	}
	return key, nil
}

// parseStored accepts the raw 32 bytes, or the JSON integer array written by
// browser installations ([12,250,...]).
func parseStored(stored []byte) ([]byte, error) {
	if len(stored) == KeySize {
		return stored, nil
	}
	if len(stored) > 0 && stored[0] == '[' {
		var ints []int
		if err := json.Unmarshal(stored, &ints); err != nil {
			return nil, errors.Join(ErrInvalidDeviceKey, err)
		}
		if len(ints) != KeySize {
			return nil, ErrInvalidDeviceKey
		}
		raw := make([]byte, KeySize)
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, ErrInvalidDeviceKey
			}
			raw[i] = byte(v)
		}
		return raw, nil
	}
	return nil, ErrInvalidDeviceKey
}
