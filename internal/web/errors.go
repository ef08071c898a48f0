package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"lanshare/internal/files"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusFor maps a files error to the HTTP status and the message shown to clients.
// I/O details stay in the log.
func statusFor(err error) (int, string) {
	var fe *files.Error
	if !errors.As(err, &fe) {
		return http.StatusInternalServerError, "Internal server error"
	}
	switch fe.Kind {
	case files.KindValidation:
		if errors.Is(err, files.ErrTooLarge) {
			return http.StatusBadRequest, fmt.Sprintf("File too large (max: %d MB)", files.LimitMB(fe.Limit))
		}
		return http.StatusBadRequest, "Invalid upload"
	case files.KindProtocol:
		return http.StatusBadRequest, "Malformed upload request"
	case files.KindNotFound:
		return http.StatusNotFound, "File not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
