package kvstore

import "errors"

var (
	ErrNotFound       = errors.New("key not found")
	ErrEmptyKey       = errors.New("empty storage key")
	ErrInvalidConfig  = errors.New("invalid storage configuration")
	ErrCorruptedStore = errors.New("storage file is corrupted")
)
