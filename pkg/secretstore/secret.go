package secretstore

import "github.com/dmitrymomot/otpfill/pkg/totp"

// Secret describes one prompted value.
type Secret struct {
	// Key is the storage identifier.
	Key string
	// Message is shown when asking the user.
	Message string
	// Normalize, when set, rewrites the answer before validation.
	Normalize func(string) string
	// Validate, when set, rejects answers before anything is stored.
	Validate func(string) error
}

// Credentials are the companion username and password.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both fields are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}

// TOTPSecret describes the shared TOTP seed stored under key. Typed input is
// normalised and must decode under mode.
func TOTPSecret(key string, mode totp.DecodeMode) Secret {
	return Secret{
		Key:       key,
		Message:   "Enter your TOTP secret",
		Normalize: totp.NormalizeSecret,
		Validate: func(s string) error {
			return totp.ValidateSecret(s, mode)
		},
	}
}
