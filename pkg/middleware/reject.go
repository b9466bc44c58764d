package middleware

import (
	"encoding/json"
	"net/http"
)

// requestIDFrom returns the request id stamped by RequestLogging, or
// an empty string for requests that bypassed it.
func requestIDFrom(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// reject writes a minimal JSON error for requests stopped before they
// reach a handler.
func reject(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := json.Marshal(map[string]string{"error": message})
	_, _ = w.Write(body)
}
