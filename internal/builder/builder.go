// Package builder implements the Builder Strategy (§4.3): a small, closed
// set of image-producing strategies selected by a project's nimble.yaml.
// New strategies are added as new types satisfying Builder, dispatched from
// Select — not via dynamic loading.
package builder

import (
	"context"
	"fmt"

	"github.com/nimble-agent/nimble/internal/engine"
	"github.com/nimble-agent/nimble/internal/projectconfig"
)

// Builder is a stateless capability: build the sources at buildPath into an
// image named imageName:imageTag.
type Builder interface {
	Build(ctx context.Context, buildPath, imageName, imageTag string) (engine.Image, error)
}

// Select dispatches a projectconfig.BuilderType to its concrete strategy.
func Select(builderType projectconfig.BuilderType, engineClient *engine.Client) (Builder, error) {
	switch builderType {
	case projectconfig.BuilderDockerfile:
		return &DockerfileBuilder{engine: engineClient}, nil
	case projectconfig.BuilderGo:
		return &GoBuilder{}, nil
	default:
		return nil, fmt.Errorf("no builder registered for type %q", builderType)
	}
}
