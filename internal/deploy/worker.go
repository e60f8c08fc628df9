// Package deploy implements the Deploy Worker (C5): the single long-lived
// consumer of the deploy queue that starts a container, discovers its
// published port, swaps the app's active deployment, and retires the
// predecessor.
package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/nimble-agent/nimble/internal/engine"
	"github.com/nimble-agent/nimble/internal/models"
	"github.com/nimble-agent/nimble/internal/queue"
	"github.com/nimble-agent/nimble/internal/store"
)

// Worker drains the deploy queue. Only this worker writes Deployment
// status transitions beyond the initial Queued write made by the Build
// Worker, so the state machine in §4.5.2 never races.
type Worker struct {
	store        *store.Store
	engineClient *engine.Client
	logger       *slog.Logger
}

// NewWorker constructs a Worker.
func NewWorker(s *store.Store, engineClient *engine.Client, logger *slog.Logger) *Worker {
	return &Worker{store: s, engineClient: engineClient, logger: logger}
}

// Run drains deployQueue until it is closed.
func (w *Worker) Run(deployQueue *queue.Queue[models.DeployJob]) {
	w.logger.Info("deploy worker started")

	for {
		job, ok := deployQueue.Receive()
		if !ok {
			w.logger.Info("deploy worker stopped (queue closed)")
			return
		}

		w.logger.Info("processing deploy job", "deploy_id", job.DeployID, "build_id", job.BuildID)
		if err := w.processDeploy(job); err != nil {
			w.logger.Error("deployment failed", "deploy_id", job.DeployID, "error", err)
		}
	}
}

func (w *Worker) fail(deployID uuid.UUID, cause error) error {
	if err := w.store.UpdateDeploymentStatus(deployID, models.DeployFailed); err != nil {
		w.logger.Error("failed to record deployment failure", "deploy_id", deployID, "error", err)
	}
	return cause
}

func (w *Worker) processDeploy(job models.DeployJob) error {
	ctx := context.Background()

	if err := w.store.UpdateDeploymentStatus(job.DeployID, models.DeployDeploying); err != nil {
		return fmt.Errorf("updating deploy status to deploying: %w", err)
	}

	if job.PreviousActiveDeployment != nil {
		w.retirePredecessor(ctx, *job.PreviousActiveDeployment)
	}

	containerName := fmt.Sprintf("nimble-deploy-%s", job.DeployID)
	labels := map[string]string{
		"nimble.app":       job.App,
		"nimble.deploy_id": job.DeployID.String(),
	}

	containerID, err := w.engineClient.Run(ctx, job.ImageReference, containerName, job.AppPort, labels)
	if err != nil {
		return w.fail(job.DeployID, fmt.Errorf("starting container for deploy %q: %w", job.DeployID, err))
	}

	hostPort, found, err := w.engineClient.Port(ctx, containerName, job.AppPort)
	if err != nil {
		return w.fail(job.DeployID, fmt.Errorf("looking up published port for deploy %q: %w", job.DeployID, err))
	}

	var address *string
	if found {
		addr := fmt.Sprintf("http://127.0.0.1:%s", hostPort)
		address = &addr
	}

	if err := w.store.SetDeploymentContainer(job.DeployID, containerID, containerName, address); err != nil {
		return fmt.Errorf("recording container info for deploy %q: %w", job.DeployID, err)
	}
	if err := w.store.UpdateDeploymentStatus(job.DeployID, models.DeployRunning); err != nil {
		return fmt.Errorf("updating deploy status to running: %w", err)
	}
	if err := w.store.SetActiveDeployment(job.App, &job.DeployID); err != nil {
		return fmt.Errorf("setting active deployment for app %q: %w", job.App, err)
	}

	w.logger.Info("deployment started",
		"deploy_id", job.DeployID, "build_id", job.BuildID,
		"container_id", containerID, "container_name", containerName, "address", address,
	)

	return nil
}

// retirePredecessor is best-effort (PreviousCleanupFailed, §7): its failure
// is logged, never propagated, and never blocks promotion of the new
// deployment.
func (w *Worker) retirePredecessor(ctx context.Context, previousID uuid.UUID) {
	record, err := w.store.GetDeployment(previousID)
	if err != nil {
		w.logger.Error("failed to load predecessor deployment for retirement", "deploy_id", previousID, "error", err)
		return
	}

	if record.ContainerID != nil {
		if err := w.engineClient.Remove(ctx, *record.ContainerID); err != nil {
			w.logger.Error("failed to remove predecessor container", "deploy_id", previousID, "container_id", *record.ContainerID, "error", err)
		}
	}

	if err := w.store.UpdateDeploymentStatus(previousID, models.DeployStopped); err != nil {
		w.logger.Error("failed to mark predecessor deployment stopped", "deploy_id", previousID, "error", err)
	}
}
