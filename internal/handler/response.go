package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maren/photorestore/internal/domain"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError maps a domain error to an HTTP status and writes the error body.
// Unknown errors are logged and hidden behind a generic 500 message.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "An internal error occurred"

	var domErr *domain.Error
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &domErr):
		status = statusFor(domErr.Err)
		message = domErr.Message
	case errors.As(err, &valErr):
		status = http.StatusBadRequest
		message = valErr.Error()
	case errors.Is(err, domain.ErrInsufficientCredits):
		status = http.StatusBadRequest
		message = "Insufficient credits"
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = "Resource not found"
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = "Invalid request"
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
		message = "Unauthorized"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		message = "Conflict"
	default:
		slog.Error("unhandled error", "error", err)
	}

	WriteJSON(w, status, ErrorResponse{Error: message})
}

func statusFor(sentinel error) int {
	switch {
	case errors.Is(sentinel, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(sentinel, domain.ErrInvalidInput), errors.Is(sentinel, domain.ErrInsufficientCredits):
		return http.StatusBadRequest
	case errors.Is(sentinel, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(sentinel, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
