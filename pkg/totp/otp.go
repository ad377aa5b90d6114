package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	Digits = 6  // Code length
	Period = 30 // Step size in seconds (RFC 6238 default)

	modulus = 1_000_000
)

// Clock abstracts the time source so codes can be computed for fixed moments in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Counter returns the number of whole 30-second steps since the Unix epoch.
func Counter(t time.Time) uint64 {
	return uint64(t.Unix()) / Period
}

// GenerateHOTP implements RFC 4226 with HMAC-SHA1 and a 6-digit result.
func GenerateHOTP(key []byte, counter uint64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low nibble of the last byte selects a 31-bit window.
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", Digits, code%modulus)
}

// GenerateTOTPWithTime returns the code for the 30-second window containing t.
// The result depends only on secret, t and mode.
func GenerateTOTPWithTime(secret string, t time.Time, mode DecodeMode) (string, error) {
	if secret == "" {
		return "", errors.Join(ErrFailedToGenerateOTP, ErrMissingSecret)
	}
	key, err := DecodeKey(secret, mode)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerateOTP, err)
	}
	return GenerateHOTP(key, Counter(t)), nil
}

// Generator computes codes for the current moment of its clock.
type Generator struct {
	mode  DecodeMode
	clock Clock
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithDecodeMode selects how secrets are decoded. Defaults to DecodeLegacy.
func WithDecodeMode(mode DecodeMode) GeneratorOption {
	return func(g *Generator) {
		if mode != "" {
			g.mode = mode
		}
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) GeneratorOption {
	return func(g *Generator) {
		if c != nil {
			g.clock = c
		}
	}
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		mode:  DecodeLegacy,
		clock: SystemClock,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mode returns the configured decode mode.
func (g *Generator) Mode() DecodeMode {
	return g.mode
}

// Generate returns the code for the current window.
func (g *Generator) Generate(secret string) (string, error) {
	return GenerateTOTPWithTime(secret, g.clock.Now(), g.mode)
}

// SecondsRemaining reports how long the current code stays valid.
func (g *Generator) SecondsRemaining() int {
	return Period - int(g.clock.Now().Unix()%Period)
}
