package builder

import (
	"context"

	"github.com/nimble-agent/nimble/internal/engine"
)

// DockerfileBuilder builds a project by invoking the local container
// engine against build_path/Dockerfile.
type DockerfileBuilder struct {
	engine *engine.Client
}

// Build requires buildPath/Dockerfile to be present; the engine surfaces
// that as a BuildFailed error if it is missing.
func (b *DockerfileBuilder) Build(ctx context.Context, buildPath, imageName, imageTag string) (engine.Image, error) {
	return b.engine.Build(ctx, buildPath, imageName, imageTag)
}
