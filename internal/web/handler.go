// Package web is the HTTP surface of the file share: the index page, the
// upload, download and delete endpoints, and a JSON listing.
package web

import (
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"lanshare/internal/files"
	"lanshare/internal/logging"
)

// Notifier receives a call for every stored or deleted file and serves the
// change feed browsers subscribe to.
type Notifier interface {
	http.Handler
	Publish(eventType, name string)
}

// Event types passed to Notifier.Publish.
const (
	EventUploaded = "uploaded"
	EventDeleted  = "deleted"
)

// ErrNoService is returned by New when svc is nil.
var ErrNoService = errors.New("web: nil files service")

// Handler serves the file share.
type Handler struct {
	files   *files.Service
	events  Notifier
	page    *template.Template
	access  []accessURL
	refresh time.Duration
	log     *slog.Logger
	httpLog *slog.Logger
	now     func() time.Time
}

// New builds a Handler. events may be nil, which disables the change feed.
func New(svc *files.Service, events Notifier, info PageInfo, log *slog.Logger) (*Handler, error) {
	if svc == nil {
		return nil, ErrNoService
	}
	if log == nil {
		log = logging.Discard()
	}
	h := &Handler{
		files:   svc,
		events:  events,
		refresh: info.Refresh,
		log:     log.With(logging.Component("web")),
		httpLog: log,
		now:     time.Now,
	}

	page, err := parseIndex(func() time.Time { return h.now() })
	if err != nil {
		return nil, err
	}
	h.page = page
	h.access = accessURLs(info.URLs, h.log)
	return h, nil
}

// Routes returns the complete handler, middleware included. maxClients bounds
// concurrent file requests; the long-lived change feed does not count.
func (h *Handler) Routes(maxClients int64) http.Handler {
	app := http.NewServeMux()
	app.HandleFunc("GET /{$}", h.index)
	app.HandleFunc("POST /upload", h.upload)
	app.HandleFunc("GET /download/{filename}", h.download)
	app.HandleFunc("POST /delete/{filename}", h.delete)
	app.HandleFunc("GET /api/files", h.list)
	app.HandleFunc("GET /health", h.health)

	mux := http.NewServeMux()
	if h.events != nil {
		mux.Handle("GET /events", h.events)
	}
	mux.Handle("/", MaxClients(maxClients)(app))

	return Logging(h.httpLog)(SecurityHeaders(mux))
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		w.Header().Set("Connection", "close")
		writeError(w, http.StatusBadRequest, "Expected a multipart/form-data body")
		return
	}

	saved, err := h.files.Ingest(r.Context(), mr)
	for _, up := range saved {
		h.publish(EventUploaded, up.Name)
	}
	if err != nil {
		status, msg := statusFor(err)
		if status >= 500 {
			h.log.ErrorContext(r.Context(), "upload failed", logging.RequestID(RequestID(r.Context())), logging.Error(err))
		} else {
			h.log.WarnContext(r.Context(), "upload rejected", logging.RequestID(RequestID(r.Context())), logging.Error(err))
		}
		// The rest of the body is never read
		w.Header().Set("Connection", "close")
		writeError(w, status, msg)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	d, err := h.files.Open(r.Context(), r.PathValue("filename"))
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}
	defer d.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeContent(w, r, d.Name, d.Info.ModTime(), d)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if err := h.files.Delete(r.Context(), name); err != nil {
		if files.KindOf(err) == files.KindNotFound {
			h.log.WarnContext(r.Context(), "delete of missing file", logging.File(files.SanitizeName(name)))
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete file")
		return
	}
	h.publish(EventDeleted, files.SanitizeName(name))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.files.List(r.Context())
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len("OK")))
	w.Write([]byte("OK"))
}

func (h *Handler) publish(eventType, name string) {
	if h.events != nil {
		h.events.Publish(eventType, name)
	}
}
