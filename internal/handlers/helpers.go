package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bobmcallan/stock-radar/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	return false
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// StatusForError maps an error kind to its HTTP status.
func StatusForError(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, models.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrTransport):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// WriteErrorWithCode writes an error response carrying the error kind as "code".
// Internal errors are reported without detail.
func WriteErrorWithCode(w http.ResponseWriter, err error) error {
	status := StatusForError(err)
	code := models.ErrorCode(err)
	message := err.Error()
	if status == http.StatusRequestEntityTooLarge {
		code = "input"
		message = "el archivo supera el tamaño máximo permitido"
	} else if status == http.StatusInternalServerError {
		message = "internal error"
	}
	return WriteJSON(w, status, map[string]string{
		"status": "error",
		"code":   code,
		"error":  message,
	})
}

// decodeJSON reads a JSON body into dst, reporting problems as input errors.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return models.NewInputError("invalid JSON body", err)
	}
	return nil
}
