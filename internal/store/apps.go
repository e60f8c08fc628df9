package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nimble-agent/nimble/internal/models"
)

// UpsertApp idempotently ensures an app row exists. Upserting an app that
// already exists leaves the whole row untouched, active_deployment_id and
// timestamps included.
func (s *Store) UpsertApp(name string) error {
	ctx, cancel := withTimeout()
	defer cancel()

	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO apps (name, created_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert app %q: %w", name, err)
	}
	return nil
}

// SetActiveDeployment replaces the app's active-deployment pointer.
// deployID may be nil to clear it. Only the Deploy Worker calls this, and
// it processes jobs for a given app serially, so this never races.
func (s *Store) SetActiveDeployment(app string, deployID *uuid.UUID) error {
	ctx, cancel := withTimeout()
	defer cancel()

	var deployIDText *string
	if deployID != nil {
		text := deployID.String()
		deployIDText = &text
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE apps SET active_deployment_id = ?, updated_at = ? WHERE name = ?`,
		deployIDText, time.Now().UTC(), app,
	)
	if err != nil {
		return fmt.Errorf("failed to set active deployment for app %q: %w", app, err)
	}
	return requireRowsAffected(result, app)
}

// GetApp fetches a single app by name, returning ErrNotFound if absent.
func (s *Store) GetApp(name string) (*models.App, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	row := s.conn.QueryRowContext(ctx,
		`SELECT name, active_deployment_id, created_at, updated_at FROM apps WHERE name = ?`,
		name,
	)

	var (
		app                models.App
		activeDeploymentID *string
	)
	err := row.Scan(&app.Name, &activeDeploymentID, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app %q: %w", name, err)
	}

	if activeDeploymentID != nil {
		id, err := uuid.Parse(*activeDeploymentID)
		if err != nil {
			return nil, fmt.Errorf("invalid active_deployment_id %q for app %q: %w", *activeDeploymentID, name, err)
		}
		app.ActiveDeploymentID = &id
	}

	return &app, nil
}

// GetActiveDeploymentID is a thin convenience wrapper over GetApp, following
// the design note that the app row is always read first to avoid an
// in-memory cycle between App and Deployment.
func (s *Store) GetActiveDeploymentID(app string) (*uuid.UUID, error) {
	record, err := s.GetApp(app)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record.ActiveDeploymentID, nil
}
