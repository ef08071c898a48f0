package files

import (
	"context"
	"errors"
	"io/fs"

	"lanshare/internal/logging"
	"lanshare/internal/storage"
)

// Download is an open stored file. The caller must Close it.
type Download struct {
	storage.File
	Name string
	Info fs.FileInfo
}

// Open resolves a client supplied name to a stored file.
// The name is sanitized the same way uploads are, so clients must use the
// name reported by List.
func (s *Service) Open(ctx context.Context, name string) (*Download, error) {
	safe := SanitizeName(name)
	if safe == "" {
		return nil, &Error{Kind: KindNotFound, Op: "download", Err: fs.ErrNotExist}
	}

	f, err := s.store.Open(safe)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			return nil, &Error{Kind: KindNotFound, Op: "download", Name: safe, Err: err}
		}
		s.log.ErrorContext(ctx, "open file failed", logging.File(safe), logging.Error(err))
		return nil, &Error{Kind: KindIO, Op: "download", Name: safe, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		s.log.ErrorContext(ctx, "stat file failed", logging.File(safe), logging.Error(err))
		return nil, &Error{Kind: KindIO, Op: "download", Name: safe, Err: err}
	}
	return &Download{File: f, Name: safe, Info: info}, nil
}

// Delete removes the stored file a client supplied name resolves to.
// A missing file is an error with KindNotFound, never a silent success.
func (s *Service) Delete(ctx context.Context, name string) error {
	safe := SanitizeName(name)
	if safe == "" {
		return &Error{Kind: KindNotFound, Op: "delete", Err: fs.ErrNotExist}
	}

	if err := s.store.Remove(safe); err != nil {
		kind := KindIO
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			kind = KindNotFound
		}
		s.log.ErrorContext(ctx, "delete file failed", logging.File(safe), logging.Error(err))
		return &Error{Kind: kind, Op: "delete", Name: safe, Err: err}
	}

	s.log.InfoContext(ctx, "file deleted", logging.File(safe))
	return nil
}
