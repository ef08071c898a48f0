package files

import (
	"errors"
	"io"
	"io/fs"
)

// maxCollisionRetries bounds the numbered suffixes tried after the timestamped name.
const maxCollisionRetries = 99

// ResolveName returns the name a new upload of name should be stored under:
// name itself when it is free, otherwise stem_<unix seconds>.ext.
// The check is not atomic; Create below closes the gap.
func (s *Service) ResolveName(name string) (string, error) {
	exists, err := s.store.Exists(name)
	if err != nil {
		return "", err
	}
	if !exists {
		return name, nil
	}
	return timestampedName(name, s.now()), nil
}

// create opens a new file for name without ever clobbering an existing one.
// The resolved name is tried first; if another writer took it in the meantime the
// exclusive create fails and the next candidate in the sequence
// name, stem_<ts>.ext, stem_<ts>_1.ext, ... is tried.
func (s *Service) create(name string) (string, io.WriteCloser, error) {
	resolved, err := s.ResolveName(name)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	candidate := func(i int) string {
		switch i {
		case 0:
			return name
		case 1:
			return timestampedName(name, now)
		default:
			return numberedName(name, now, i-1)
		}
	}

	start := 0
	if resolved != name {
		start = 1
	}

	for i := start; i <= maxCollisionRetries+1; i++ {
		// The first attempt uses exactly what ResolveName chose
		final := resolved
		if i != start {
			final = candidate(i)
		}

		w, err := s.store.Create(final)
		if err == nil {
			return final, w, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", nil, err
		}
	}
	return "", nil, fs.ErrExist
}
