package devicekey

import "errors"

var (
	ErrKeyNotFound         = errors.New("device key not found")
	ErrInvalidDeviceKey    = errors.New("stored device key is invalid")
	ErrFailedToGenerateKey = errors.New("failed to generate device key")
	ErrFailedToLoadKey     = errors.New("failed to load device key")
	ErrFailedToStoreKey    = errors.New("failed to store device key")
)
