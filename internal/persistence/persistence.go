// Package persistence provides SecureStorage backends: an in-memory store
// for tests and an encrypted SQLite store for durable sessions.
package persistence

import "errors"

// ErrWrongPassphrase is returned when a stored value cannot be decrypted
// with the key derived from the configured passphrase.
var ErrWrongPassphrase = errors.New("secure storage: wrong passphrase or corrupted value")
