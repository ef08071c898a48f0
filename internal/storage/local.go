package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Local stores files in a directory on the host filesystem.
type Local struct {
	root string
}

// NewLocal returns a Local rooted at dir, creating the directory if it does not exist.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage root: %w", ErrInvalidName)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", dir, err)
	}
	return &Local{root: filepath.Clean(dir)}, nil
}

// Root returns the directory the files live in.
func (l *Local) Root() string {
	return l.root
}

// path resolves name inside the root, refusing anything that is not a plain segment.
func (l *Local) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`+"\x00") {
		return "", fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return filepath.Join(l.root, name), nil
}

func (l *Local) Create(name string) (io.WriteCloser, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, fs.ErrNotExist) {
		// Root removed while running: recreate it once and retry
		if mkErr := os.MkdirAll(l.root, dirPerm); mkErr != nil {
			return nil, fmt.Errorf("recreate storage root: %w", mkErr)
		}
		f, err = os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return f, nil
}

func (l *Local) Open(name string) (File, error) {
	p, err := l.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", name, fs.ErrNotExist)
	}
	return f, nil
}

func (l *Local) List() ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read storage root: %w", err)
	}
	return entries, nil
}

func (l *Local) Remove(name string) error {
	p, err := l.path(name)
	if err != nil {
		return err
	}

	info, err := os.Lstat(p)
	if err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	// Only regular files are shared; never remove a directory that happens to sit in the root
	if info.IsDir() {
		return fmt.Errorf("remove %s: %w", name, fs.ErrNotExist)
	}

	if err := os.Remove(p); err != nil {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

func (l *Local) Exists(name string) (bool, error) {
	p, err := l.path(name)
	if err != nil {
		return false, err
	}

	_, err = os.Lstat(p)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", name, err)
	}
}
