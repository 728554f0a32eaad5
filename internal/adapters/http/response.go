package http

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServerError hides internals behind a generic body; the cause is the
// caller's to log.
func writeServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "Server error")
}

func writeValidationError(w http.ResponseWriter, issues map[string]string) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "Invalid payload",
		"issues": issues,
	})
}
