// Package storage defines the file abstraction behind the diary's persisted
// records.
package storage

// Provider is the interface for record file operations. Paths are relative
// to the provider root.
type Provider interface {
	// Exists reports whether a regular file is present at path.
	Exists(path string) bool
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Create atomically writes content to path, failing with
	// apperr.ErrAlreadyExists when the file is already present.
	Create(path string, content []byte) error
	// Abs returns the absolute location of path, used for watching.
	Abs(path string) (string, error)
}
