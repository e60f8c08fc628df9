package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRunCapturesStdout(t *testing.T) {
	stdout, _, err := run(context.Background(), "echo", "-n", "hello")
	if err != nil {
		t.Fatalf("run(echo): unexpected error: %v", err)
	}
	if stdout != "hello" {
		t.Fatalf("run(echo) stdout = %q, want %q", stdout, "hello")
	}
}

func TestRunReturnsErrorOnNonZeroExit(t *testing.T) {
	_, _, err := run(context.Background(), "false")
	if err == nil {
		t.Fatal("run(false): expected a non-nil error for a failing command")
	}
}

func TestBuildFailsFastWithoutDockerfile(t *testing.T) {
	buildDir := t.TempDir() // deliberately has no Dockerfile

	client := &Client{}
	_, err := client.Build(context.Background(), buildDir, "demo", "latest")
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("Build with no Dockerfile: got %v, want ErrBuildFailed", err)
	}
}

func TestBuildFailsFastWithoutDockerfileDoesNotTouchDocker(t *testing.T) {
	// Regression guard: Build must check for the Dockerfile before shelling
	// out, so this check runs correctly even on a host with no docker binary
	// on PATH at all.
	buildDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(buildDir, "not-a-dockerfile.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing fixture file: %v", err)
	}

	client := &Client{}
	_, err := client.Build(context.Background(), buildDir, "demo", "latest")
	if !errors.Is(err, ErrBuildFailed) {
		t.Fatalf("Build with no Dockerfile: got %v, want ErrBuildFailed", err)
	}
}
