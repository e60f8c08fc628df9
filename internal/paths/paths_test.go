package paths

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestPathsAreRootedAtDataDir(t *testing.T) {
	p := New("/var/lib/nimble")
	buildID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	tests := map[string]struct {
		got  string
		want string
	}{
		"data dir":       {got: p.DataDir(), want: "/var/lib/nimble"},
		"database file":  {got: p.DatabaseFile(), want: filepath.Join("/var/lib/nimble", "nimble.db")},
		"source archive": {got: p.SourceArchive(buildID), want: filepath.Join("/var/lib/nimble", "artifacts", "source", buildID.String()+".tar.gz")},
		"build dir":      {got: p.BuildDir(buildID), want: filepath.Join("/var/lib/nimble", "artifacts", "build", buildID.String())},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}

func TestDistinctBuildsGetDistinctPaths(t *testing.T) {
	p := New("/var/lib/nimble")
	a := p.BuildDir(uuid.New())
	b := p.BuildDir(uuid.New())

	if a == b {
		t.Errorf("expected distinct build dirs, got the same path %q twice", a)
	}
}
