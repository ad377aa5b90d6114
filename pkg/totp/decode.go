package totp

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// Alphabet is the RFC 4648 Base32 alphabet. Lookups are case-insensitive.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

const hexDigits = "0123456789abcdef"

// DecodeMode selects how a Base32 secret is turned into HMAC keying material.
type DecodeMode string

const (
	// DecodeLegacy re-slices the 5-bit symbols into 4-bit nibbles and rebuilds
	// bytes from hex pairs. A dangling nibble becomes its own byte. This matches
	// the codes produced by already deployed browser installations.
	DecodeLegacy DecodeMode = "legacy"
	// DecodeStandard is RFC 4648 Base32: floor(5n/8) bytes, leftover bits dropped.
	DecodeStandard DecodeMode = "standard"
)

// ParseDecodeMode converts a configuration value into a DecodeMode.
// An empty value selects DecodeLegacy.
func ParseDecodeMode(s string) (DecodeMode, error) {
	switch DecodeMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", DecodeLegacy:
		return DecodeLegacy, nil
	case DecodeStandard:
		return DecodeStandard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDecodeMode, s)
	}
}

// symbolValue returns the 5-bit value of a Base32 character or -1.
func symbolValue(c byte) int {
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A')
	case c >= 'a' && c <= 'z':
		return int(c - 'a')
	case c >= '2' && c <= '7':
		return int(c-'2') + 26
	default:
		return -1
	}
}

func symbols(secret string) ([]byte, error) {
	out := make([]byte, len(secret))
	for i := 0; i < len(secret); i++ {
		v := symbolValue(secret[i])
		if v < 0 {
			return nil, fmt.Errorf("%w: invalid character %q at position %d", ErrMalformedSecret, secret[i], i)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// DecodeHex converts a Base32 secret into a string of lowercase hex nibbles.
// Each symbol contributes 5 bits MSB-first; the bit string is cut into 4-bit
// nibbles and trailing bits that do not fill a nibble are dropped.
// Characters outside the alphabet yield ErrMalformedSecret.
func DecodeHex(secret string) (string, error) {
	syms, err := symbols(secret)
	if err != nil {
		return "", err
	}

	var (
		sb    strings.Builder
		acc   uint32
		nbits uint
	)
	sb.Grow(len(syms) * 5 / 4)
	for _, v := range syms {
		acc = acc<<5 | uint32(v)
		nbits += 5
		for nbits >= 4 {
			nbits -= 4
			sb.WriteByte(hexDigits[(acc>>nbits)&0x0f])
		}
		acc &= (1 << nbits) - 1
	}
	return sb.String(), nil
}

// DecodeKey decodes a Base32 secret into raw HMAC key bytes using mode.
func DecodeKey(secret string, mode DecodeMode) ([]byte, error) {
	switch mode {
	case DecodeLegacy, "":
		return decodeLegacy(secret)
	case DecodeStandard:
		return decodeStandard(secret)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecodeMode, mode)
	}
}

func decodeLegacy(secret string) ([]byte, error) {
	nibbles, err := DecodeHex(secret)
	if err != nil {
		return nil, err
	}

	key := make([]byte, 0, (len(nibbles)+1)/2)
	for i := 0; i < len(nibbles); i += 2 {
		hi := nibbleValue(nibbles[i])
		if i+1 == len(nibbles) {
			// A lone trailing nibble is parsed on its own, not shifted.
			key = append(key, hi)
			break
		}
		key = append(key, hi<<4|nibbleValue(nibbles[i+1]))
	}
	return key, nil
}

func nibbleValue(c byte) byte {
	if c >= 'a' {
		return c - 'a' + 10
	}
	return c - '0'
}

func decodeStandard(secret string) ([]byte, error) {
	syms, err := symbols(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, err
	}

	key := make([]byte, 0, len(syms)*5/8)
	var (
		acc   uint32
		nbits uint
	)
	for _, v := range syms {
		acc = acc<<5 | uint32(v)
		nbits += 5
		if nbits >= 8 {
			nbits -= 8
			key = append(key, byte(acc>>nbits))
			acc &= (1 << nbits) - 1
		}
	}
	return key, nil
}

// NormalizeSecret cleans up a secret typed or pasted by a user: full-width
// characters are folded to ASCII, whitespace and hyphens are removed and the
// result is upper-cased. It does not validate the alphabet.
func NormalizeSecret(s string) string {
	s = width.Fold.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '-' {
			return -1
		}
		return r
	}, s)
	return strings.ToUpper(s)
}

// ValidateSecret reports whether s is a non-empty secret that decodes under mode.
func ValidateSecret(s string, mode DecodeMode) error {
	if s == "" {
		return ErrMissingSecret
	}
	_, err := DecodeKey(s, mode)
	return err
}
