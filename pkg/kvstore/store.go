package kvstore

import "context"

// Store is a byte-oriented key-value store. Values round-trip unchanged.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set creates or overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// AtomicStore is implemented by backends that can write a value only when the
// key does not exist yet. It reports whether the write happened.
type AtomicStore interface {
	Store
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
