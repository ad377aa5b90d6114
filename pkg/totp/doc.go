// Package totp decodes Base32 shared secrets and computes RFC 6238 time-based
// one-time passwords with HMAC-SHA1, a 30-second step and 6 digits.
//
// The package is dependency-light and pure: every exported function is a
// deterministic function of its inputs, except Generator which reads a Clock.
//
// # Secret decoding
//
// Two decode modes exist. DecodeLegacy reproduces the nibble-based decoding
// used by existing browser installations: the 5-bit symbols are re-sliced into
// 4-bit nibbles, the nibbles are paired back into bytes, and an odd trailing
// nibble becomes a byte of its own. DecodeStandard is plain RFC 4648. For
// secrets whose length is a multiple of eight characters both modes agree.
//
// Both modes reject characters outside A-Z and 2-7 (case-insensitive) with
// ErrMalformedSecret instead of producing corrupted key material.
//
// # Usage
//
//	gen := totp.NewGenerator(totp.WithDecodeMode(totp.DecodeStandard))
//	code, err := gen.Generate("JBSWY3DPEHPK3PXP")
//	if err != nil {
//	    // errors.Is(err, totp.ErrMalformedSecret)
//	}
//	fmt.Println(code, gen.SecondsRemaining())
//
// Codes from adjacent windows are never accepted or produced; there is no
// clock-skew smoothing.
package totp
