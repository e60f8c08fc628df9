package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/store"
)

// DeploymentHandler implements the /deployments control-plane routes.
type DeploymentHandler struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDeploymentHandler constructs a DeploymentHandler.
func NewDeploymentHandler(s *store.Store, logger *slog.Logger) *DeploymentHandler {
	return &DeploymentHandler{store: s, logger: logger}
}

type deploymentResponse struct {
	ID            string  `json:"id"`
	BuildID       string  `json:"build_id"`
	App           string  `json:"app"`
	Image         string  `json:"image"`
	Status        string  `json:"status"`
	ContainerID   *string `json:"container_id,omitempty"`
	ContainerName *string `json:"container_name,omitempty"`
	Address       *string `json:"address,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func deploymentResponseFrom(d *models.Deployment) deploymentResponse {
	return deploymentResponse{
		ID:            d.ID.String(),
		BuildID:       d.BuildID.String(),
		App:           d.App,
		Image:         d.Image,
		Status:        string(d.Status),
		ContainerID:   d.ContainerID,
		ContainerName: d.ContainerName,
		Address:       d.Address,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     d.UpdatedAt.Format(time.RFC3339),
	}
}

// ListDeployments handles GET /deployments?build_id=<id>.
func (h *DeploymentHandler) ListDeployments(w http.ResponseWriter, r *http.Request) {
	var buildIDFilter *uuid.UUID
	if raw := r.URL.Query().Get("build_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid build_id query parameter", h.logger)
			return
		}
		buildIDFilter = &id
	}

	deployments, err := h.store.ListDeployments(buildIDFilter)
	if err != nil {
		h.logger.Error("failed to list deployments", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	responses := make([]deploymentResponse, 0, len(deployments))
	for _, d := range deployments {
		responses = append(responses, deploymentResponseFrom(d))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetDeployment handles GET /deployments/{id}.
func (h *DeploymentHandler) GetDeployment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid deployment id", h.logger)
		return
	}

	deployment, err := h.store.GetDeployment(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to get deployment", "deployment_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, deploymentResponseFrom(deployment))
}
