package api

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/paths"
	"github.com/nimble-agent/nimble/internal/queue"
	"github.com/nimble-agent/nimble/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, Dependencies) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := filepath.Join(t.TempDir(), "nimble.db")

	dataStore, err := store.Open(dbPath, logger)
	if err != nil {
		t.Fatalf("store.Open: unexpected error: %v", err)
	}
	t.Cleanup(func() { dataStore.Close() })

	deps := Dependencies{
		Logger:     logger,
		Store:      dataStore,
		Paths:      paths.New(t.TempDir()),
		BuildQueue: queue.New[models.BuildJob](4),
	}
	return NewRouter(deps), deps
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /health status = %d, want 200", rec.Code)
	}

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding /health body: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("health status = %q, want ok", body.Status)
	}
}

func gzippedTar(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	if _, err := gzWriter.Write([]byte("not a real tar, just bytes to store")); err != nil {
		t.Fatalf("writing gzip payload: %v", err)
	}
	if err := gzWriter.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

func TestCreateBuildEnqueuesAndReturnsID(t *testing.T) {
	router, deps := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/builds", bytes.NewReader(gzippedTar(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /builds status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body createBuildTestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding /builds response: %v", err)
	}
	if body.Status != string(models.BuildQueued) {
		t.Fatalf("build status = %q, want queued", body.Status)
	}

	job, ok := deps.BuildQueue.Receive()
	if !ok {
		t.Fatal("expected a build job to be enqueued")
	}
	if job.BuildID.String() != body.BuildID {
		t.Fatalf("enqueued job id = %s, want %s", job.BuildID, body.BuildID)
	}
	if !job.Deploy {
		t.Fatal("expected Deploy=true by default")
	}
}

type createBuildTestResponse struct {
	BuildID string `json:"build_id"`
	Status  string `json:"status"`
}

func TestCreateBuildWithDeployFalse(t *testing.T) {
	router, deps := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/builds?deploy=false", bytes.NewReader(gzippedTar(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /builds?deploy=false status = %d, body = %s", rec.Code, rec.Body.String())
	}

	job, ok := deps.BuildQueue.Receive()
	if !ok {
		t.Fatal("expected a build job to be enqueued")
	}
	if job.Deploy {
		t.Fatal("expected Deploy=false when deploy=false is passed")
	}
}

func TestCreateBuildQueueFullReturns503(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dbPath := filepath.Join(t.TempDir(), "nimble.db")
	dataStore, err := store.Open(dbPath, logger)
	if err != nil {
		t.Fatalf("store.Open: unexpected error: %v", err)
	}
	t.Cleanup(func() { dataStore.Close() })

	deps := Dependencies{
		Logger:     logger,
		Store:      dataStore,
		Paths:      paths.New(t.TempDir()),
		BuildQueue: queue.New[models.BuildJob](0),
	}
	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/builds", bytes.NewReader(gzippedTar(t)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("POST /builds against a zero-capacity queue: status = %d, want 503", rec.Code)
	}
}

func TestGetBuildNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/builds/00000000-0000-0000-0000-000000000000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET /builds/{unknown-id} status = %d, want 404", rec.Code)
	}
}

func TestGetBuildInvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/builds/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET /builds/not-a-uuid status = %d, want 400", rec.Code)
	}
}

func TestListDeploymentsEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/deployments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /deployments status = %d, want 200", rec.Code)
	}

	var results []deploymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("decoding /deployments response: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected zero deployments, got %d", len(results))
	}
}

func TestListDeploymentsInvalidBuildIDFilter(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/deployments?build_id=not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET /deployments?build_id=not-a-uuid status = %d, want 400", rec.Code)
	}
}

// chiURLParamSmokeTest confirms NewRouter returns a chi.Router.
func chiURLParamSmokeTest(t *testing.T, router http.Handler) {
	t.Helper()
	if _, ok := router.(chi.Router); !ok {
		t.Fatal("NewRouter did not return a chi.Router")
	}
}

func TestRouterIsChiRouter(t *testing.T) {
	router, _ := newTestRouter(t)
	chiURLParamSmokeTest(t, router)
}
