package secretstore

import "strings"

// DefaultNamespace prefixes storage identifiers when none is configured.
const DefaultNamespace = "otpfill"

// Keys are the storage identifiers of one installation.
type Keys struct {
	DeviceKey string
	TOTP      string
	Username  string
	Password  string
}

// KeysFor derives the identifiers for namespace. An empty namespace uses
// DefaultNamespace.
func KeysFor(namespace string) Keys {
	ns := strings.TrimSpace(namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	return Keys{
		DeviceKey: ns + "_device_encryption_key",
		TOTP:      ns + "_totp_encrypted",
		Username:  ns + "_username",
		Password:  ns + "_password",
	}
}
