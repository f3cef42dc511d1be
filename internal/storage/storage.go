// Package storage provides the persistence layer for story content:
// a small file store abstraction over the data directory, the content
// index manifest, and a Redis-backed reader-session store.
package storage

import "errors"

// ErrNotFound is returned when a path or index entry does not exist.
var ErrNotFound = errors.New("not found")

// Store is the key-value/file persistence collaborator. Paths are
// slash-separated and relative to the store root.
type Store interface {
	// Exists reports whether path holds content.
	Exists(path string) bool

	// Read returns the content at path.
	Read(path string) ([]byte, error)

	// Write persists data at path, replacing previous content.
	Write(path string, data []byte) error

	// Delete removes path. Deleting an absent path returns ErrNotFound.
	Delete(path string) error

	// List returns the file paths directly under dir, in storage
	// enumeration order. A missing dir yields an empty list.
	List(dir string) ([]string, error)
}
