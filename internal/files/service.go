// Package files implements the shared file store: upload ingestion with a size
// ceiling, collision-safe naming, listing, download and deletion.
package files

import (
	"log/slog"
	"time"

	"lanshare/internal/logging"
	"lanshare/internal/storage"
)

const defaultChunkSize = 32 * 1024

// Service is safe for concurrent use. It keeps no state between calls; everything
// it reports is read back from storage.
type Service struct {
	store           storage.Storage
	maxBytes        int64
	cleanupRejected bool
	chunkSize       int
	now             func() time.Time
	log             *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, used for collision suffixes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCleanupRejected removes the partial file of an upload that exceeded the ceiling.
// By default it is left on disk.
func WithCleanupRejected(on bool) Option {
	return func(s *Service) {
		s.cleanupRejected = on
	}
}

// WithChunkSize sets the read size used while streaming a part to storage.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// New returns a Service over store that rejects parts larger than maxBytes.
func New(store storage.Storage, maxBytes int64, opts ...Option) *Service {
	s := &Service{
		store:     store,
		maxBytes:  maxBytes,
		chunkSize: defaultChunkSize,
		now:       time.Now,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logging.Component("files"))
	return s
}

// MaxBytes returns the per-part byte ceiling.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}
