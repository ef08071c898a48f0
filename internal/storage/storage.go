// Package storage provides access to the flat directory that holds shared files.
package storage

import (
	"errors"
	"io"
	"io/fs"
)

// ErrInvalidName is returned when a name is not usable as a single path segment.
var ErrInvalidName = errors.New("invalid file name")

// File is a stored file opened for reading.
type File interface {
	io.ReadSeekCloser
	Stat() (fs.FileInfo, error)
}

// Storage is the capability set the file service needs from a storage root.
// Names are single path segments; implementations reject anything else with ErrInvalidName.
type Storage interface {
	// Create opens name for writing and fails with fs.ErrExist if it is already taken.
	Create(name string) (io.WriteCloser, error)
	// Open opens name for reading.
	Open(name string) (File, error)
	// List returns the entries directly inside the root. A missing root lists as empty.
	List() ([]fs.DirEntry, error)
	// Remove deletes name.
	Remove(name string) error
	// Exists reports whether name is present.
	Exists(name string) (bool, error)
}
