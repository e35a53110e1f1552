// Package kv defines the ordered key-value store contract that the resource
// workers persist into, plus the engines that implement it.
package kv

import "errors"

var (
	// ErrNotFound is returned by Get and Delete when no record has the key.
	ErrNotFound = errors.New("key not found")

	// ErrAlreadyExists is returned by PutIfAbsent when the key is taken.
	ErrAlreadyExists = errors.New("key already exists")
)

// Entry is a single key-value pair returned by prefix scans.
type Entry struct {
	Key   string
	Value string
}

// Store is an ordered map of opaque string keys to string values.
// Put, PutIfAbsent and Delete are atomic per key; ScanPrefix returns
// entries in ascending key order. Any error other than ErrNotFound or
// ErrAlreadyExists indicates a storage failure.
//
// Implementations must be safe for concurrent use: PutIfAbsent is the
// conditional-write primitive the workers rely on to resolve create
// collisions without overwriting.
type Store interface {
	Get(key string) (string, error)
	Put(key, value string) error
	PutIfAbsent(key, value string) error
	Delete(key string) error
	ScanPrefix(prefix string) ([]Entry, error)
	Close() error
}
