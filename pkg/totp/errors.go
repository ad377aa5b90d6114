package totp

import "errors"

var (
	ErrMalformedSecret     = errors.New("malformed base32 secret")
	ErrMissingSecret       = errors.New("missing secret")
	ErrInvalidDecodeMode   = errors.New("invalid secret decode mode")
	ErrFailedToGenerateOTP = errors.New("failed to generate TOTP")
)
