package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nimble-agent/nimble/internal/models"
)

// CreateDeployment writes a new deployment row. address may be nil; it is
// only ever set once the container has actually started (see
// SetDeploymentContainer).
func (s *Store) CreateDeployment(id, buildID uuid.UUID, app, image string, status models.DeployStatus, address *string) error {
	ctx, cancel := withTimeout()
	defer cancel()

	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO deployments (id, build_id, app, image, status, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id.String(), buildID.String(), app, image, string(status), address, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create deployment %q: %w", id, err)
	}
	return nil
}

// UpdateDeploymentStatus rewrites a deployment's status. Only the Deploy
// Worker calls this for any status beyond the initial Queued write made by
// CreateDeployment, keeping the state machine's transitions single-writer.
func (s *Store) UpdateDeploymentStatus(id uuid.UUID, status models.DeployStatus) error {
	ctx, cancel := withTimeout()
	defer cancel()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE deployments SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update status for deployment %q: %w", id, err)
	}
	return requireRowsAffected(result, id.String())
}

// SetDeploymentContainer records the running container's identity. Called
// exactly once per successful deployment, immediately before the status
// transitions to Running.
func (s *Store) SetDeploymentContainer(id uuid.UUID, containerID, containerName string, address *string) error {
	ctx, cancel := withTimeout()
	defer cancel()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE deployments SET container_id = ?, container_name = ?, address = ?, updated_at = ? WHERE id = ?`,
		containerID, containerName, address, time.Now().UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to set container info for deployment %q: %w", id, err)
	}
	return requireRowsAffected(result, id.String())
}

// GetDeployment fetches a single deployment by id, returning ErrNotFound if
// absent.
func (s *Store) GetDeployment(id uuid.UUID) (*models.Deployment, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	row := s.conn.QueryRowContext(ctx,
		`SELECT id, build_id, app, image, status, container_id, container_name, address, created_at, updated_at
		 FROM deployments WHERE id = ?`,
		id.String(),
	)

	deployment, err := scanDeployment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment %q: %w", id, err)
	}
	return deployment, nil
}

// ListDeployments returns deployments ordered newest-first, optionally
// filtered to a single build.
func (s *Store) ListDeployments(buildID *uuid.UUID) ([]*models.Deployment, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	var query strings.Builder
	query.WriteString(`SELECT id, build_id, app, image, status, container_id, container_name, address, created_at, updated_at FROM deployments`)

	args := make([]any, 0, 1)
	if buildID != nil {
		query.WriteString(` WHERE build_id = ?`)
		args = append(args, buildID.String())
	}
	query.WriteString(` ORDER BY created_at DESC`)

	rows, err := s.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var deployments []*models.Deployment
	for rows.Next() {
		deployment, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deployment row: %w", err)
		}
		deployments = append(deployments, deployment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deployment rows: %w", err)
	}

	return deployments, nil
}

func scanDeployment(row scanner) (*models.Deployment, error) {
	var (
		deployment models.Deployment
		idText     string
		buildID    string
		statusTx   string
	)
	if err := row.Scan(
		&idText,
		&buildID,
		&deployment.App,
		&deployment.Image,
		&statusTx,
		&deployment.ContainerID,
		&deployment.ContainerName,
		&deployment.Address,
		&deployment.CreatedAt,
		&deployment.UpdatedAt,
	); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("invalid deployment id %q in row: %w", idText, err)
	}
	parsedBuildID, err := uuid.Parse(buildID)
	if err != nil {
		return nil, fmt.Errorf("invalid build id %q in row: %w", buildID, err)
	}
	status, err := models.ParseDeployStatus(statusTx)
	if err != nil {
		return nil, err
	}

	deployment.ID = id
	deployment.BuildID = parsedBuildID
	deployment.Status = status
	return &deployment, nil
}
