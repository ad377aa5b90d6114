// Package devicekey manages the per-installation AES-256 key that protects
// every locally stored secret.
//
// The key is 32 random bytes persisted under a fixed storage identifier. It is
// never rotated or deleted; losing it makes every envelope encrypted under it
// unrecoverable. Two views of it exist:
//
//   - EncryptionKey (Manager.EncryptionKey) seals and opens, and is created on
//     first use.
//   - DecryptionKey (Manager.DecryptionKey) only opens, and fails with
//     ErrKeyNotFound when nothing is stored.
//
// Creation is single-flight. A mutex covers goroutines of one process, and on
// stores that implement kvstore.AtomicStore the key is written with SetNX so a
// concurrently starting process adopts the winner's key instead of orphaning it.
//
// A stored value may be the raw 32 bytes or a JSON array of 32 integers, the
// form written by browser installations.
package devicekey
