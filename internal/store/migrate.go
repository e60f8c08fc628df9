package store

import "fmt"

// schema is the SQL DDL for a fresh database. It uses IF NOT EXISTS so it is
// safe to run on every startup. For the single-node agent this is a
// sufficient migration strategy; the column-introspection pass below
// additionally tolerates databases created before the app/address columns
// existed.
const schema = `
CREATE TABLE IF NOT EXISTS builds (
    id         TEXT PRIMARY KEY,
    status     TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_builds_status ON builds(status);
CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);

CREATE TABLE IF NOT EXISTS deployments (
    id             TEXT PRIMARY KEY,
    build_id       TEXT NOT NULL,
    app            TEXT NOT NULL DEFAULT 'unknown',
    image          TEXT NOT NULL,
    status         TEXT NOT NULL,
    container_id   TEXT,
    container_name TEXT,
    address        TEXT,
    created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_deployments_status ON deployments(status);
CREATE INDEX IF NOT EXISTS idx_deployments_created_at ON deployments(created_at);

CREATE TABLE IF NOT EXISTS apps (
    name                 TEXT PRIMARY KEY,
    active_deployment_id TEXT,
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_apps_active_deployment_id ON apps(active_deployment_id);
`

func (s *Store) migrate() error {
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema migration: %w", err)
	}

	if err := s.migrateLegacyDeploymentColumns(); err != nil {
		return fmt.Errorf("failed to migrate legacy deployments columns: %w", err)
	}

	return nil
}

// migrateLegacyDeploymentColumns adds the address and app columns to a
// deployments table created before they existed, backfilling app to the
// sentinel "unknown" for rows that predate it. A fresh database created by
// the schema above already has both columns, so this is a no-op for it.
func (s *Store) migrateLegacyDeploymentColumns() error {
	hasAddress, err := s.deploymentColumnExists("address")
	if err != nil {
		return err
	}
	if !hasAddress {
		if _, err := s.conn.Exec(`ALTER TABLE deployments ADD COLUMN address TEXT`); err != nil {
			return fmt.Errorf("adding address column: %w", err)
		}
	}

	hasApp, err := s.deploymentColumnExists("app")
	if err != nil {
		return err
	}
	if !hasApp {
		if _, err := s.conn.Exec(`ALTER TABLE deployments ADD COLUMN app TEXT`); err != nil {
			return fmt.Errorf("adding app column: %w", err)
		}
		if _, err := s.conn.Exec(`UPDATE deployments SET app = 'unknown' WHERE app IS NULL`); err != nil {
			return fmt.Errorf("backfilling app column: %w", err)
		}
	}

	return nil
}

// deploymentColumnExists uses SQLite's table_info pragma to detect whether a
// column is present, rather than relying on the Exec error from a failed
// ALTER TABLE, which would also fire for unrelated failures.
func (s *Store) deploymentColumnExists(columnName string) (bool, error) {
	rows, err := s.conn.Query(`PRAGMA table_info('deployments')`)
	if err != nil {
		return false, fmt.Errorf("querying table_info: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return false, fmt.Errorf("scanning table_info row: %w", err)
		}
		if name == columnName {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("iterating table_info rows: %w", err)
	}

	return false, nil
}
