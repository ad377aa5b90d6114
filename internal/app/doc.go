// Package app wires otpfill's packages into the operations the CLI exposes:
// printing the current code, watching and filling it, resetting the secret,
// and managing companion credentials.
//
// Config is read from OTPFILL_* variables. The key-value backend is chosen by
// OTPFILL_STORE and opened by OpenStore; each backend reads its own settings
// (see Backends).
package app
