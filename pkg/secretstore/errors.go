package secretstore

import "errors"

var (
	ErrNoSecretProvided = errors.New("no secret provided")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrInvalidSecret    = errors.New("secret rejected by validation")
	ErrFailedToLoad     = errors.New("failed to load secret")
	ErrFailedToStore    = errors.New("failed to store secret")
)
