// Package kvstore defines the byte-oriented key-value storage used to persist
// the device key and encrypted secrets, together with the backends that do not
// need a network connection pool of their own.
//
// Backends:
//
//   - MemoryStore: process memory, for tests and ephemeral sessions.
//   - FileStore  : a single JSON document on disk; SetNX is atomic within one process.
//   - BoltStore  : a bbolt database bucket.
//   - S3Store    : one object per key in an S3 (or compatible) bucket.
//
// Redis, PostgreSQL and MongoDB backends live next to their connection helpers in
// pkg/redis, pkg/pg and pkg/mongo and implement the same interfaces.
//
// Every backend returns ErrNotFound for missing keys and implements AtomicStore,
// whose SetNX writes only when the key is absent. The device key manager relies
// on SetNX so that two first-run callers cannot persist different keys. For
// FileStore that holds inside one process only.
package kvstore
