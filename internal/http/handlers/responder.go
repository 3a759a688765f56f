package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/PablitoTheChicken/ForReal-Server/internal/http/middleware"
	"github.com/PablitoTheChicken/ForReal-Server/internal/logging"
)

type errorBody struct {
	Error     string `json:"error"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(logger, "failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeErrorDetails(w, r, status, message, nil, logger)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, message string, details any, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(middleware.RequestIDHeader)
	}
	writeJSON(w, status, errorBody{Error: message, Details: details, RequestID: reqID}, logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
