package logging

import (
	"log/slog"
	"time"
)

// Helpers return the empty Attr for nil or empty values, which slog drops,
// so call sites can pass them unconditionally.

// Error creates an attribute for err under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component tags a log line with the subsystem that emitted it.
func Component(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("component", name)
}

// File is the stored name of a shared file.
func File(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("file", name)
}

// Size is a byte count.
func Size(n int64) slog.Attr {
	return slog.Int64("size", n)
}

// RequestID identifies one HTTP request across log lines.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method is the HTTP request method.
func Method(m string) slog.Attr {
	return slog.String("method", m)
}

// Path is the HTTP request path.
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

// Status is the HTTP response status code.
func Status(code int) slog.Attr {
	return slog.Int("status", code)
}

// Bytes is the number of response body bytes written.
func Bytes(n int64) slog.Attr {
	return slog.Int64("bytes", n)
}

// Latency is how long a request took.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// RemoteAddr is the client address as seen by the server.
func RemoteAddr(addr string) slog.Attr {
	if addr == "" {
		return slog.Attr{}
	}
	return slog.String("remote_addr", addr)
}
