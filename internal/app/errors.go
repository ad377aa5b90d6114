package app

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrFailedToOpenStore = errors.New("failed to open store")
)
