package files

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without parsing messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindIO
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindIO:
		return "io"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// ErrTooLarge marks an upload part that crossed the configured ceiling.
var ErrTooLarge = errors.New("file too large")

// Error is returned by every Service operation.
type Error struct {
	Kind  Kind
	Op    string // upload, download, delete, list
	Name  string // sanitized name, when one is known
	Limit int64  // byte ceiling, set for size violations
	Err   error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Name != "" {
		msg += " " + e.Name
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// LimitMB renders a byte ceiling as whole megabytes.
func LimitMB(limit int64) int64 {
	return limit / (1024 * 1024)
}

func tooLarge(name string, limit int64) *Error {
	return &Error{
		Kind:  KindValidation,
		Op:    "upload",
		Name:  name,
		Limit: limit,
		Err:   fmt.Errorf("%w (max: %d MB)", ErrTooLarge, LimitMB(limit)),
	}
}
