package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/paths"
	"github.com/nimble-agent/nimble/internal/queue"
	"github.com/nimble-agent/nimble/internal/store"
)

// BuildHandler implements the /builds control-plane routes.
type BuildHandler struct {
	store      *store.Store
	paths      paths.Paths
	buildQueue *queue.Queue[models.BuildJob]
	logger     *slog.Logger
}

// NewBuildHandler constructs a BuildHandler.
func NewBuildHandler(s *store.Store, p paths.Paths, buildQueue *queue.Queue[models.BuildJob], logger *slog.Logger) *BuildHandler {
	return &BuildHandler{store: s, paths: p, buildQueue: buildQueue, logger: logger}
}

// buildResponse is the JSON shape returned for a single build.
type buildResponse struct {
	ID        string `json:"build_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func buildResponseFrom(b *models.Build) buildResponse {
	return buildResponse{
		ID:        b.ID.String(),
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateBuild handles POST /builds?deploy=<bool>. The body is a gzipped tar
// of the source tree; it is saved at its deterministic workspace path
// before the build job is queued, so the Build Worker never touches the
// request itself.
func (h *BuildHandler) CreateBuild(w http.ResponseWriter, r *http.Request) {
	deploy := true
	if raw := r.URL.Query().Get("deploy"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid deploy query parameter: %q", raw), h.logger)
			return
		}
		deploy = parsed
	}

	buildID := uuid.New()
	archivePath := h.paths.SourceArchive(buildID)

	if err := saveArchive(archivePath, r.Body); err != nil {
		h.logger.Error("failed to save submitted archive", "build_id", buildID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	if err := h.store.CreateBuild(buildID, models.BuildQueued); err != nil {
		h.logger.Error("failed to create build record", "build_id", buildID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	err := h.buildQueue.TrySend(models.BuildJob{BuildID: buildID, Deploy: deploy})
	switch {
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusServiceUnavailable, "build queue is full, please try again later", h.logger)
		return
	case errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"build_id": buildID.String(),
		"status":   string(models.BuildQueued),
	})
}

// saveArchive writes body to destPath, creating parent directories first.
func saveArchive(destPath string, body io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating archive directory: %w", err)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return fmt.Errorf("writing archive contents: %w", err)
	}
	return nil
}

// ListBuilds handles GET /builds?status=<status>&limit=<n>.
func (h *BuildHandler) ListBuilds(w http.ResponseWriter, r *http.Request) {
	var statusFilter *models.BuildStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseBuildStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), h.logger)
			return
		}
		statusFilter = &status
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit query parameter: %q", raw), h.logger)
			return
		}
		limit = parsed
	}

	builds, err := h.store.ListBuilds(limit, statusFilter)
	if err != nil {
		h.logger.Error("failed to list builds", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	responses := make([]buildResponse, 0, len(builds))
	for _, b := range builds {
		responses = append(responses, buildResponseFrom(b))
	}
	writeJSON(w, http.StatusOK, responses)
}

// GetBuild handles GET /builds/{id}.
func (h *BuildHandler) GetBuild(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid build id", h.logger)
		return
	}

	build, err := h.store.GetBuild(id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("failed to get build", "build_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, buildResponseFrom(build))
}
