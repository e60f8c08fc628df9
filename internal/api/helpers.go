package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON serializes payload and writes it as the response body, setting
// Content-Type and the status code. Marshaling into a buffer first (rather
// than streaming via json.NewEncoder) avoids the "200 OK trap" where an
// encoding failure midway through a stream would leave a truncated body
// behind an already-sent success status.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"internal encoding error"}`, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(statusCode)
	w.Write(body) //nolint:errcheck // nothing actionable if the client has disconnected
}

// writeError logs the error server-side and writes {"error": message} to
// the client. The message is always a controlled string, never a raw Go
// error, per the "opaque internal server error" policy for the request
// surface.
func writeError(w http.ResponseWriter, statusCode int, message string, logger *slog.Logger) {
	logger.Error("request error", "status", statusCode, "message", message)
	writeJSON(w, statusCode, map[string]string{"error": message})
}
