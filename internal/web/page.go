package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"lanshare/internal/files"
	"lanshare/internal/logging"
	"lanshare/internal/qr"
)

//go:embed templates/index.html
var templateFS embed.FS

// PageInfo is what the index page shows besides the file list.
type PageInfo struct {
	URLs    []string      // access URLs, each rendered with a QR code
	Refresh time.Duration // auto-refresh period
}

type accessURL struct {
	URL string
	QR  template.URL // data: URI, empty when encoding failed
}

type indexData struct {
	Files          []files.FileRecord
	Access         []accessURL
	MaxSizeMB      int64
	RefreshSeconds int
}

func parseIndex(now func() time.Time) (*template.Template, error) {
	return template.New("index.html").Funcs(template.FuncMap{
		"icon":       icon,
		"formatSize": formatSize,
		"age": func(unix int64) string {
			return relativeAge(time.Unix(unix, 0), now())
		},
	}).ParseFS(templateFS, "templates/index.html")
}

// accessURLs renders the QR codes once; the URLs do not change while the server runs.
func accessURLs(urls []string, log *slog.Logger) []accessURL {
	out := make([]accessURL, 0, len(urls))
	for _, u := range urls {
		a := accessURL{URL: u}
		uri, err := qr.DataURI(u, qr.DefaultSize)
		if err != nil {
			log.Warn("render qr code failed", slog.String("url", u), logging.Error(err))
		} else {
			a.QR = template.URL(uri)
		}
		out = append(out, a)
	}
	return out
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	records, err := h.files.List(r.Context())
	if err != nil {
		status, msg := statusFor(err)
		writeError(w, status, msg)
		return
	}

	refresh := int(h.refresh / time.Second)
	if refresh < 1 {
		refresh = 1
	}
	data := indexData{
		Files:          records,
		Access:         h.access,
		MaxSizeMB:      files.LimitMB(h.files.MaxBytes()),
		RefreshSeconds: refresh,
	}

	// Render to a buffer so a template error still produces a clean 500
	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		h.log.ErrorContext(r.Context(), "render index failed", logging.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}
