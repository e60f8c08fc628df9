package api

import (
	"log/slog"
	"net/http"
	"time"
)

// HealthHandler holds the dependencies needed by the health endpoint. It
// currently needs none beyond the logger, but a struct keeps the pattern
// consistent with every other handler type in this package.
type HealthHandler struct {
	logger *slog.Logger
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(logger *slog.Logger) *HealthHandler {
	return &HealthHandler{logger: logger}
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Health handles GET /health: the minimum signal that the process is alive
// and the HTTP stack works. No store or engine check is performed here.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
