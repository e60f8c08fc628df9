// Package build implements the Build Worker (C4): the single long-lived
// consumer of the build queue that extracts a submitted archive, builds an
// image from it, and — if requested — hands the result to the Deploy
// Worker.
package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nimble-agent/nimble/internal/archive"
	"github.com/nimble-agent/nimble/internal/builder"
	"github.com/nimble-agent/nimble/internal/engine"
	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/paths"
	"github.com/nimble-agent/nimble/internal/projectconfig"
	"github.com/nimble-agent/nimble/internal/queue"
	"github.com/nimble-agent/nimble/internal/store"
)

// Worker drains the build queue. A failure inside one job is logged and
// recorded on that Build's record; the worker never exits on a per-job
// error, only when the queue is closed.
type Worker struct {
	store        *store.Store
	paths        paths.Paths
	engineClient *engine.Client
	deployQueue  *queue.Queue[models.DeployJob]
	logger       *slog.Logger
}

// NewWorker constructs a Worker. deployQueue is the handoff the Build
// Worker enqueues onto when a build's BuildJob.Deploy is true.
func NewWorker(s *store.Store, p paths.Paths, engineClient *engine.Client, deployQueue *queue.Queue[models.DeployJob], logger *slog.Logger) *Worker {
	return &Worker{store: s, paths: p, engineClient: engineClient, deployQueue: deployQueue, logger: logger}
}

// Run drains buildQueue until it is closed.
func (w *Worker) Run(buildQueue *queue.Queue[models.BuildJob]) {
	w.logger.Info("build worker started")

	for {
		job, ok := buildQueue.Receive()
		if !ok {
			w.logger.Info("build worker stopped (queue closed)")
			return
		}

		w.logger.Info("processing build job", "build_id", job.BuildID)
		if err := w.processBuild(job); err != nil {
			w.logger.Error("build failed", "build_id", job.BuildID, "error", err)
		}
	}
}

// fail records the build as Failed before returning cause, so every
// terminal failure path ends with a persisted Failed status.
func (w *Worker) fail(buildID uuid.UUID, cause error) error {
	if err := w.store.UpdateBuildStatus(buildID, models.BuildFailed); err != nil {
		w.logger.Error("failed to record build failure", "build_id", buildID, "error", err)
	}
	return cause
}

func (w *Worker) processBuild(job models.BuildJob) error {
	buildID := job.BuildID
	sourceArchive := w.paths.SourceArchive(buildID)
	buildDir := w.paths.BuildDir(buildID)

	if err := w.store.UpdateBuildStatus(buildID, models.BuildBuilding); err != nil {
		return fmt.Errorf("updating build status to building: %w", err)
	}

	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return w.fail(buildID, fmt.Errorf("creating build directory %q: %w", buildDir, err))
	}

	if err := archive.Extract(sourceArchive, buildDir); err != nil {
		return w.fail(buildID, fmt.Errorf("extracting archive %q: %w", sourceArchive, err))
	}

	nimbleYAMLPath := filepath.Join(buildDir, "nimble.yaml")
	if _, err := os.Stat(nimbleYAMLPath); err != nil {
		return w.fail(buildID, fmt.Errorf("nimble.yaml not found in build directory %q", buildDir))
	}

	cfg, err := projectconfig.FromFile(nimbleYAMLPath)
	if err != nil {
		return w.fail(buildID, fmt.Errorf("loading nimble.yaml: %w", err))
	}

	strategy, err := builder.Select(cfg.Builder, w.engineClient)
	if err != nil {
		return w.fail(buildID, err)
	}

	imageName := fmt.Sprintf("nimble-build-%s", buildID)
	image, err := strategy.Build(context.Background(), buildDir, imageName, "latest")
	if err != nil {
		return w.fail(buildID, fmt.Errorf("building image for %q: %w", buildID, err))
	}

	if err := w.store.UpdateBuildStatus(buildID, models.BuildSuccess); err != nil {
		return fmt.Errorf("updating build status to success: %w", err)
	}

	w.logger.Info("build completed successfully", "build_id", buildID, "image", image.Reference)

	if !job.Deploy {
		return nil
	}

	return w.enqueueDeploy(buildID, cfg, image)
}

func (w *Worker) enqueueDeploy(buildID uuid.UUID, cfg *projectconfig.Config, image engine.Image) error {
	if err := w.store.UpsertApp(cfg.App); err != nil {
		return fmt.Errorf("upserting app %q: %w", cfg.App, err)
	}

	previous, err := w.store.GetActiveDeploymentID(cfg.App)
	if err != nil {
		return fmt.Errorf("reading active deployment for app %q: %w", cfg.App, err)
	}

	deployID := uuid.New()
	if err := w.store.CreateDeployment(deployID, buildID, cfg.App, image.Reference, models.DeployQueued, nil); err != nil {
		return fmt.Errorf("creating deployment %q: %w", deployID, err)
	}

	job := models.DeployJob{
		DeployID:                 deployID,
		BuildID:                  buildID,
		App:                      cfg.App,
		ImageReference:           image.Reference,
		AppPort:                  cfg.Port,
		PreviousActiveDeployment: previous,
	}

	if err := w.deployQueue.TrySend(job); err != nil {
		// No retry mechanism exists for a dropped handoff; the deployment
		// row is left Queued and the failure is logged for operator follow-up.
		w.logger.Error("failed to enqueue deploy job", "deploy_id", deployID, "build_id", buildID, "error", err)
	}

	return nil
}
