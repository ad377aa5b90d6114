package envelope

import "errors"

var (
	ErrDecryptionFailed = errors.New("failed to decrypt secret")
	ErrEncryptionFailed = errors.New("failed to encrypt secret")
	ErrInvalidEnvelope  = errors.New("invalid encrypted envelope")
)
