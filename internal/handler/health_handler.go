// Package handler holds the plain HTTP endpoints that sit next to the RPC surface.
package handler

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

type HealthHandler struct {
	Pinger repository.Pinger
	// Now defaults to time.Now.
	Now func() time.Time
}

type healthResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Health checks the store with a round-trip query.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Pinger.Ping(r.Context()); err != nil {
		logging.Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusInternalServerError, healthResponse{
			Success: false,
			Message: "Database connection failed",
			Error:   err.Error(),
		})
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Success:   true,
		Message:   "Database connection successful",
		Timestamp: now().UTC().Format(time.RFC3339Nano),
	})
}

// Test always reports success.
func Test(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Success: true,
		Message: "API is working",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
