package files

import (
	"cmp"
	"context"
	"slices"
	"time"

	"lanshare/internal/logging"
)

// FileRecord describes one stored file as observed at listing time.
type FileRecord struct {
	Name       string `json:"name"`
	Size       uint64 `json:"size"`
	ModifiedAt int64  `json:"modified_at"` // unix seconds
	Kind       string `json:"kind"`
}

// Modified returns ModifiedAt as a time.
func (r FileRecord) Modified() time.Time {
	return time.Unix(r.ModifiedAt, 0)
}

// List returns the regular files directly inside the storage root, most recently
// modified first. Entries that cannot be inspected are skipped.
func (s *Service) List(ctx context.Context) ([]FileRecord, error) {
	entries, err := s.store.List()
	if err != nil {
		s.log.ErrorContext(ctx, "list storage failed", logging.Error(err))
		return nil, &Error{Kind: KindIO, Op: "list", Err: err}
	}

	records := make([]FileRecord, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info, or unreadable
			s.log.DebugContext(ctx, "skip unreadable entry", logging.File(e.Name()), logging.Error(err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		records = append(records, FileRecord{
			Name:       e.Name(),
			Size:       uint64(info.Size()),
			ModifiedAt: info.ModTime().Unix(),
			Kind:       KindOfName(e.Name()),
		})
	}

	slices.SortStableFunc(records, func(a, b FileRecord) int {
		if c := cmp.Compare(b.ModifiedAt, a.ModifiedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return records, nil
}
