// Package web holds HTTP helpers and middleware shared by all handlers.
package web

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
)

func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}

// RequireContentType verifies the declared media type of a body-bearing
// request before the body is parsed. Returns false after writing a 415
// response when the header is missing or declares a different media type.
func RequireContentType(w http.ResponseWriter, r *http.Request, logger *slog.Logger, contentType string) bool {
	header := r.Header.Get("Content-Type")
	if header == "" {
		RespondError(w, logger, http.StatusUnsupportedMediaType, "Content-Type header is required")
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType != contentType {
		RespondError(w, logger, http.StatusUnsupportedMediaType, "Content-Type must be "+contentType)
		return false
	}
	return true
}
