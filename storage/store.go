// Package storage provides the flat key-value persistence layer for session
// and device-cache state.
package storage

import "errors"

// ErrNotFound is returned when a key is absent.
var ErrNotFound = errors.New("key not found")

// BatchTx provides Set and Delete within an atomic batch. Used for multi-key
// writes that must land together, such as the logout purge.
type BatchTx interface {
	Set(key string, value []byte) error
	Delete(key string) error
}

// Store defines the durable key-value surface. Values are opaque bytes;
// callers own the encoding.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Batch(fn func(tx BatchTx) error) error
}
