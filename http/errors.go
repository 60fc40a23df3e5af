package http

import (
	"encoding/json"
	"net/http"
	"time"
)

// ServerError is the structured error body sent to clients.
type ServerError struct {
	Success   bool      `json:"success"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	Timestamp time.Time `json:"ts"`
}

// NewServerError creates a ServerError named after the status code.
func NewServerError(code int, message string) ServerError {
	return ServerError{
		Success:   false,
		Name:      http.StatusText(code),
		Message:   message,
		Code:      code,
		Timestamp: time.Now().UTC(),
	}
}

// String returns the JSON representation used for plain text responses.
func (e ServerError) String() string {
	b, err := json.Marshal(e)
	if err != nil {
		return e.Name + ": " + e.Message
	}
	return string(b)
}
