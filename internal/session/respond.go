package session

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding errors are logged; the response is already committed.
func writeJSON(w http.ResponseWriter, logger zerolog.Logger, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeJSONError writes an error response as JSON with the given status code
func writeJSONError(w http.ResponseWriter, logger zerolog.Logger, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, logger, map[string]string{"error": message})
}

// writeJSONStatus writes a simple status response as JSON
func writeJSONStatus(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func writeAccepted(w http.ResponseWriter, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, logger, map[string]string{"status": "accepted"})
}
