package apperrors

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body returned by every endpoint.
type Envelope struct {
	Success      bool        `json:"success"`
	Data         interface{} `json:"data,omitempty"`
	Error        string      `json:"error,omitempty"`
	StatusCode   int         `json:"statusCode,omitempty"`
	Message      string      `json:"message,omitempty"`
	Pagination   interface{} `json:"pagination,omitempty"`
	Notification string      `json:"notification,omitempty"`
}

// WriteError writes an error response in the standard envelope format.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Envelope{
		Success:    false,
		Error:      message,
		StatusCode: statusCode,
	})
}

// WriteSuccess writes a success response in the standard envelope format.
func WriteSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, Envelope{
		Success: true,
		Data:    data,
	})
}

// WriteEnvelope writes a caller-assembled envelope, for responses that carry
// a message, pagination block, or notification alongside data.
func WriteEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	writeJSON(w, statusCode, env)
}

func writeJSON(w http.ResponseWriter, statusCode int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		return
	}
}

// WriteBadRequest is a helper for 400 responses.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteUnauthorized is a helper for 401 responses.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

// WriteForbidden is a helper for 403 responses.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message)
}

// WriteNotFound is a helper for 404 responses.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteConflict is a helper for 409 responses.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

// WriteInternalError is a helper for 500 responses. The message should stay
// generic; storage details are logged server-side, never returned.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteNotImplemented is a helper for 501 responses (unfinished endpoints).
func WriteNotImplemented(w http.ResponseWriter) {
	WriteError(w, http.StatusNotImplemented, "Not implemented")
}

// WriteServiceUnavailable is a helper for 503 responses.
func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, message)
}

// WriteTooManyRequests is a helper for 429 responses.
func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message)
}
