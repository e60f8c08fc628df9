package builder

import (
	"context"
	"errors"

	"github.com/nimble-agent/nimble/internal/engine"
)

// ErrGoBuilderUnimplemented is returned by every GoBuilder.Build call.
var ErrGoBuilderUnimplemented = errors.New("go builder is not implemented")

// GoBuilder is a reserved placeholder strategy, kept to show how a new
// builder plugs into Select without touching the Build Worker.
type GoBuilder struct{}

func (b *GoBuilder) Build(ctx context.Context, buildPath, imageName, imageTag string) (engine.Image, error) {
	return engine.Image{}, ErrGoBuilderUnimplemented
}
