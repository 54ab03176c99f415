// Package response writes the JSON envelope every endpoint answers with:
//
//	{"ok": true, "status": 200, "data": ..., "message": "..."}
//
// ok is supplied by the caller and is not derived from status; the helpers
// below keep the two consistent.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape of every response.
type Envelope struct {
	OK      bool   `json:"ok"`
	Status  int    `json:"status"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// Respond writes status and the envelope built from the remaining arguments.
func Respond(w http.ResponseWriter, status int, ok bool, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{OK: ok, Status: status, Data: data, Message: message}) //nolint:errcheck
}

// Success sends a 200 with data.
func Success(w http.ResponseWriter, data any, message string) {
	Respond(w, http.StatusOK, true, data, message)
}

// Created sends a 201 with data.
func Created(w http.ResponseWriter, data any, message string) {
	Respond(w, http.StatusCreated, true, data, message)
}

// Error sends a failure envelope with no data.
func Error(w http.ResponseWriter, status int, message string) {
	Respond(w, status, false, nil, message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}
