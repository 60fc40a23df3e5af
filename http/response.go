package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rjavier441/rjs2"
)

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(NewServerError(code, message)); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	if errors.Is(err, rjs2.ErrNotFound) {
		WriteError(w, http.StatusNotFound, "Not Found")
		return
	}

	if errors.Is(err, rjs2.ErrForbidden) {
		WriteError(w, http.StatusForbidden, "Forbidden")
		return
	}

	if errors.Is(err, rjs2.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	// Default internal error
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
