// Package response writes JSON HTTP responses. Success bodies are flat
// (callers shape their own payloads); errors are always {"error": "..."}.
package response

import (
	"encoding/json"
	"net/http"
)

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends an arbitrary payload with the given status.
func JSON(w http.ResponseWriter, status int, payload interface{}) {
	write(w, status, payload)
}

// Success sends a 200 JSON response.
func Success(w http.ResponseWriter, payload interface{}) {
	write(w, http.StatusOK, payload)
}

// Created sends a 201 JSON response.
func Created(w http.ResponseWriter, payload interface{}) {
	write(w, http.StatusCreated, payload)
}

// Error sends {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, map[string]string{"error": message})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "validation failed",
		"fields": errs,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "unauthorized")
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter) {
	Error(w, http.StatusNotFound, "not found")
}
