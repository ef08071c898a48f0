package files

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"

	"lanshare/internal/logging"
)

// Upload describes one part that was stored.
type Upload struct {
	Name string // final stored name
	Size int64
}

// Ingest streams every file part of mr into storage.
//
// Parts without a filename are skipped. Each part is written chunk by chunk while a
// running total is checked against the ceiling; the first part that crosses it
// aborts the whole request with a KindValidation error wrapping ErrTooLarge.
// Parts stored before a failure stay stored and are returned alongside the error.
func (s *Service) Ingest(ctx context.Context, mr *multipart.Reader) ([]Upload, error) {
	var saved []Upload
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return saved, nil
		}
		if err != nil {
			return saved, &Error{Kind: KindProtocol, Op: "upload", Err: err}
		}

		name := SanitizeName(partFileName(part))
		if name == "" {
			part.Close()
			continue
		}

		up, err := s.ingestPart(ctx, name, part)
		part.Close()
		if err != nil {
			return saved, err
		}

		s.log.InfoContext(ctx, "file uploaded", logging.File(up.Name), logging.Size(up.Size))
		saved = append(saved, up)
	}
}

// partFileName reads the filename parameter straight from Content-Disposition.
// multipart.Part.FileName strips directories, which would hide the separators
// SanitizeName is meant to neutralise.
func partFileName(p *multipart.Part) string {
	disposition := p.Header.Get("Content-Disposition")
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func (s *Service) ingestPart(ctx context.Context, name string, r io.Reader) (Upload, error) {
	final, w, err := s.create(name)
	if err != nil {
		s.log.ErrorContext(ctx, "create upload destination failed", logging.File(name), logging.Error(err))
		return Upload{}, &Error{Kind: KindIO, Op: "upload", Name: name, Err: err}
	}

	buf := make([]byte, s.chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			w.Close()
			s.log.WarnContext(ctx, "upload cancelled, partial file kept", logging.File(final), logging.Size(total))
			return Upload{}, &Error{Kind: KindProtocol, Op: "upload", Name: final, Err: err}
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if total > s.maxBytes {
				w.Close()
				s.rejectOversized(ctx, final)
				return Upload{}, tooLarge(final, s.maxBytes)
			}
			if _, werr := w.Write(buf[:n]); werr != nil {
				w.Close()
				s.log.ErrorContext(ctx, "write upload failed", logging.File(final), logging.Error(werr))
				return Upload{}, &Error{Kind: KindIO, Op: "upload", Name: final, Err: werr}
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			// Framing errors and client disconnects both surface here
			w.Close()
			s.log.WarnContext(ctx, "read upload part failed", logging.File(final), logging.Error(rerr))
			return Upload{}, &Error{Kind: KindProtocol, Op: "upload", Name: final, Err: rerr}
		}
	}

	if err := w.Close(); err != nil {
		s.log.ErrorContext(ctx, "close upload failed", logging.File(final), logging.Error(err))
		return Upload{}, &Error{Kind: KindIO, Op: "upload", Name: final, Err: err}
	}
	return Upload{Name: final, Size: total}, nil
}

func (s *Service) rejectOversized(ctx context.Context, name string) {
	if !s.cleanupRejected {
		s.log.WarnContext(ctx, "upload exceeds size limit, partial file kept",
			logging.File(name), slog.Int64("limit", s.maxBytes))
		return
	}
	if err := s.store.Remove(name); err != nil {
		s.log.ErrorContext(ctx, "remove rejected upload failed", logging.File(name), logging.Error(err))
		return
	}
	s.log.WarnContext(ctx, "upload exceeds size limit, partial file removed",
		logging.File(name), slog.Int64("limit", s.maxBytes))
}
