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

// CreateBuild writes a new build row. Callers must not reuse an id; a
// collision surfaces as a wrapped sqlite constraint error.
func (s *Store) CreateBuild(id uuid.UUID, status models.BuildStatus) error {
	ctx, cancel := withTimeout()
	defer cancel()

	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO builds (id, status, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id.String(), string(status), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create build %q: %w", id, err)
	}
	return nil
}

// UpdateBuildStatus rewrites a build's status idempotently; setting the
// status to its current value is a no-op aside from updated_at.
func (s *Store) UpdateBuildStatus(id uuid.UUID, status models.BuildStatus) error {
	ctx, cancel := withTimeout()
	defer cancel()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE builds SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update status for build %q: %w", id, err)
	}
	return requireRowsAffected(result, id.String())
}

// GetBuild fetches a single build by id, returning ErrNotFound if absent.
func (s *Store) GetBuild(id uuid.UUID) (*models.Build, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	row := s.conn.QueryRowContext(ctx,
		`SELECT id, status, created_at, updated_at FROM builds WHERE id = ?`,
		id.String(),
	)

	build, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build %q: %w", id, err)
	}
	return build, nil
}

// ListBuilds returns builds ordered newest-first, optionally filtered by
// status and bounded by limit (0 or negative means unbounded).
func (s *Store) ListBuilds(limit int, status *models.BuildStatus) ([]*models.Build, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	var query strings.Builder
	query.WriteString(`SELECT id, status, created_at, updated_at FROM builds`)

	args := make([]any, 0, 2)
	if status != nil {
		query.WriteString(` WHERE status = ?`)
		args = append(args, string(*status))
	}
	query.WriteString(` ORDER BY created_at DESC`)
	if limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, limit)
	}

	rows, err := s.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []*models.Build
	for rows.Next() {
		build, err := scanBuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan build row: %w", err)
		}
		builds = append(builds, build)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating build rows: %w", err)
	}

	return builds, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows, letting scanBuild and
// scanDeployment serve both QueryRow and Query call sites.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (*models.Build, error) {
	var (
		build    models.Build
		idText   string
		statusTx string
	)
	if err := row.Scan(&idText, &statusTx, &build.CreatedAt, &build.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idText)
	if err != nil {
		return nil, fmt.Errorf("invalid build id %q in row: %w", idText, err)
	}
	status, err := models.ParseBuildStatus(statusTx)
	if err != nil {
		return nil, err
	}

	build.ID = id
	build.Status = status
	return &build, nil
}

func requireRowsAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for %q: %w", id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
