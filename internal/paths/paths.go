// Package paths is the single helper that derives every on-disk location the
// agent uses. No other package constructs these paths directly.
package paths

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Paths is rooted at a data directory (./data in dev, /var/lib/nimble in
// prod by default; see internal/config).
type Paths struct {
	dataDir string
}

// New returns a Paths rooted at dataDir.
func New(dataDir string) Paths {
	return Paths{dataDir: dataDir}
}

// DataDir returns the root directory itself.
func (p Paths) DataDir() string {
	return p.dataDir
}

// SourceArchive is the raw gzipped tar submitted for a build.
func (p Paths) SourceArchive(buildID uuid.UUID) string {
	return filepath.Join(p.dataDir, "artifacts", "source", buildID.String()+".tar.gz")
}

// BuildDir is the per-build directory the archive is extracted into.
func (p Paths) BuildDir(buildID uuid.UUID) string {
	return filepath.Join(p.dataDir, "artifacts", "build", buildID.String())
}

// DatabaseFile is the Store's SQLite database file.
func (p Paths) DatabaseFile() string {
	return filepath.Join(p.dataDir, "nimble.db")
}
