// Package response provides plain JSON response writing for the few
// endpoints that bypass the OpenAPI layer (rate limit rejections, raw
// image serving errors).
package response

import (
	"encoding/json/v2"
	"log/slog"
	"net/http"
)

// Envelope mirrors the uniform response wrapper of the API layer.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is the error half of the envelope.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Version is the envelope schema version.
const Version = 1

// JSON writes an enveloped JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		V:       Version,
		Success: status < 400,
		Data:    data,
	}
	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// Fail writes an enveloped error response.
func Fail(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	envelope := Envelope{
		V:     Version,
		Error: &Error{Code: code, Message: message},
	}
	if err := json.MarshalWrite(w, envelope); err != nil {
		if logger != nil {
			logger.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// TooManyRequests writes a 429 rejection.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	Fail(w, http.StatusTooManyRequests, "TooManyRequests", message, logger)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	Fail(w, http.StatusNotFound, "NotFound", message, logger)
}
