package files

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lanshare/internal/storage"
)

var fixedNow = time.Unix(1700000000, 0)

type part struct {
	field    string
	filename string // empty means a plain form field
	content  string
}

func newTestService(t *testing.T, maxBytes int64, opts ...Option) (*Service, *storage.Local) {
	t.Helper()
	store, err := storage.NewLocal(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(store, maxBytes, opts...), store
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		field := p.field
		if field == "" {
			field = "file"
		}
		var (
			w   io.Writer
			err error
		)
		if p.filename == "" {
			w, err = mw.CreateFormField(field)
		} else {
			w, err = mw.CreateFormFile(field, p.filename)
		}
		require.NoError(t, err)
		_, err = io.WriteString(w, p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.Boundary()
}

func ingest(t *testing.T, s *Service, parts ...part) ([]Upload, error) {
	t.Helper()
	body, boundary := multipartBody(t, parts...)
	return s.Ingest(context.Background(), multipart.NewReader(body, boundary))
}

func readStored(t *testing.T, store *storage.Local, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(store.Root(), name))
	require.NoError(t, err)
	return string(data)
}

func TestIngest_StoresParts(t *testing.T) {
	s, store := newTestService(t, 1024)

	ups, err := ingest(t, s,
		part{filename: "a.txt", content: "alpha"},
		part{field: "note", content: "not a file"},
		part{filename: "b.bin", content: "\x00\x01\x02"},
	)
	require.NoError(t, err)
	require.Len(t, ups, 2)
	assert.Equal(t, Upload{Name: "a.txt", Size: 5}, ups[0])
	assert.Equal(t, Upload{Name: "b.bin", Size: 3}, ups[1])

	assert.Equal(t, "alpha", readStored(t, store, "a.txt"))
	assert.Equal(t, "\x00\x01\x02", readStored(t, store, "b.bin"))
}

func TestIngest_SanitizesNames(t *testing.T) {
	s, store := newTestService(t, 1024)

	ups, err := ingest(t, s, part{filename: "../../evil/x.sh", content: "x"})
	require.NoError(t, err)
	require.Len(t, ups, 1)
	assert.Equal(t, ".._.._evil_x.sh", ups[0].Name)
	assert.Equal(t, "x", readStored(t, store, ".._.._evil_x.sh"))
}

func TestIngest_SkipsUnusableNames(t *testing.T) {
	s, store := newTestService(t, 1024)

	ups, err := ingest(t, s,
		part{filename: "   ", content: "blank"},
		part{filename: "..", content: "dots"},
	)
	require.NoError(t, err)
	assert.Empty(t, ups)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestIngest_CollisionGetsTimestamp(t *testing.T) {
	s, store := newTestService(t, 1024)

	_, err := ingest(t, s, part{filename: "report.pdf", content: "first"})
	require.NoError(t, err)
	ups, err := ingest(t, s, part{filename: "report.pdf", content: "second"})
	require.NoError(t, err)

	require.Len(t, ups, 1)
	assert.Equal(t, "report_1700000000.pdf", ups[0].Name)
	assert.Equal(t, "first", readStored(t, store, "report.pdf"))
	assert.Equal(t, "second", readStored(t, store, "report_1700000000.pdf"))
}

func TestIngest_CollisionSameSecondGetsNumber(t *testing.T) {
	s, store := newTestService(t, 1024)

	for _, content := range []string{"one", "two", "three"} {
		_, err := ingest(t, s, part{filename: "notes", content: content})
		require.NoError(t, err)
	}

	assert.Equal(t, "one", readStored(t, store, "notes"))
	assert.Equal(t, "two", readStored(t, store, "notes_1700000000"))
	assert.Equal(t, "three", readStored(t, store, "notes_1700000000_1"))
}

func TestIngest_SizeLimit(t *testing.T) {
	s, store := newTestService(t, 4, WithChunkSize(2))

	ups, err := ingest(t, s,
		part{filename: "ok.txt", content: "1234"},
		part{filename: "big.txt", content: "abcdef"},
		part{filename: "after.txt", content: "x"},
	)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.ErrorIs(t, err, ErrTooLarge)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.EqualValues(t, 4, fe.Limit)
	assert.Equal(t, "big.txt", fe.Name)

	// Parts before the violation are kept; nothing after it is read
	require.Len(t, ups, 1)
	assert.Equal(t, "ok.txt", ups[0].Name)
	ok, err := store.Exists("after.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	// The truncated file is left behind and never exceeds the ceiling
	partial := readStored(t, store, "big.txt")
	assert.LessOrEqual(t, len(partial), 4)
}

func TestIngest_SizeLimitExactFits(t *testing.T) {
	s, store := newTestService(t, 5)

	_, err := ingest(t, s, part{filename: "five.txt", content: "12345"})
	require.NoError(t, err)
	assert.Equal(t, "12345", readStored(t, store, "five.txt"))
}

func TestIngest_SizeLimitOneByte(t *testing.T) {
	s, _ := newTestService(t, 1)

	_, err := ingest(t, s, part{filename: "two.txt", content: "ab"})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "max: 0 MB")
}

func TestIngest_SizeLimitMessageInMB(t *testing.T) {
	s, _ := newTestService(t, 1024*1024, WithChunkSize(64*1024))

	_, err := ingest(t, s, part{filename: "big.bin", content: string(make([]byte, 1024*1024+1))})
	require.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "max: 1 MB")
}

func TestIngest_CleanupRejected(t *testing.T) {
	s, store := newTestService(t, 2, WithCleanupRejected(true))

	_, err := ingest(t, s, part{filename: "big.txt", content: "abcdef"})
	require.ErrorIs(t, err, ErrTooLarge)

	ok, err := store.Exists("big.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIngest_MalformedBody(t *testing.T) {
	s, _ := newTestService(t, 1024)

	body := bytes.NewBufferString("--xyz\r\nContent-Disposition: form-data; name=\"file\"; filename=\"a.txt\"\r\n\r\nno closing boundary")
	_, err := s.Ingest(context.Background(), multipart.NewReader(body, "xyz"))
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
}

func TestIngest_NotMultipartAtAll(t *testing.T) {
	s, _ := newTestService(t, 1024)

	_, err := s.Ingest(context.Background(), multipart.NewReader(bytes.NewBufferString("garbage"), "xyz"))
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
}

func TestIngest_CancelledContext(t *testing.T) {
	s, _ := newTestService(t, 1024)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body, boundary := multipartBody(t, part{filename: "a.txt", content: "data"})
	_, err := s.Ingest(ctx, multipart.NewReader(body, boundary))
	require.Error(t, err)
	assert.Equal(t, KindProtocol, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

// failingCreate wraps a real store and fails every Create.
type failingCreate struct {
	storage.Storage
}

func (failingCreate) Create(string) (io.WriteCloser, error) {
	return nil, errors.New("disk full")
}

func TestIngest_CreateFailureIsIO(t *testing.T) {
	_, store := newTestService(t, 1024)
	s := New(failingCreate{store}, 1024)

	_, err := ingest(t, s, part{filename: "a.txt", content: "data"})
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
}

// alwaysExists reports every Create as a collision.
type alwaysExists struct {
	storage.Storage
}

func (alwaysExists) Create(string) (io.WriteCloser, error) {
	return nil, fs.ErrExist
}

func TestIngest_GivesUpAfterRetries(t *testing.T) {
	_, store := newTestService(t, 1024)
	s := New(alwaysExists{store}, 1024)

	_, err := ingest(t, s, part{filename: "a.txt", content: "data"})
	require.Error(t, err)
	assert.Equal(t, KindIO, KindOf(err))
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestResolveName(t *testing.T) {
	s, store := newTestService(t, 1024)

	got, err := s.ResolveName("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got)

	w, err := store.Create("report.pdf")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err = s.ResolveName("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "report_1700000000.pdf", got)
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "io", KindIO.String())
	assert.Equal(t, "protocol", KindProtocol.String())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
