// Package secretstore is the façade the rest of otpfill uses for secrets.
//
// A Store combines a kvstore.Store, an envelope cipher and a prompt.Prompter:
//
//   - GetOrPrompt returns a stored secret, or asks for it once, encrypts it and
//     persists it. An empty answer stores nothing and returns
//     ErrNoSecretProvided.
//   - Prompt is the reset path: it always asks and overwrites.
//   - SaveCredentials and Credentials keep the companion username and
//     password, written only as a complete pair.
//
// Plaintext only exists in memory. Storage identifiers come from KeysFor and
// are derived from a namespace so several installations can share a backend.
// A stored value that fails to decrypt is surfaced as
// envelope.ErrDecryptionFailed and is never overwritten implicitly; the user
// recovers by resetting it.
package secretstore
