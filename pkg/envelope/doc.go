// Package envelope encrypts secrets with AES-256-GCM under the device key and
// serialises them as {"iv":[...],"data":[...]}.
//
// Every Encrypt draws a new 12-byte nonce, so encrypting the same plaintext
// twice yields different envelopes. Decrypt never returns an empty string on
// failure: a modified nonce, ciphertext or tag fails authentication with
// ErrDecryptionFailed, and a missing device key surfaces as
// devicekey.ErrKeyNotFound so callers can tell the two apart.
package envelope
