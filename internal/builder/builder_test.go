package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/nimble-agent/nimble/internal/projectconfig"
)

func TestSelectDockerfileBuilder(t *testing.T) {
	b, err := Select(projectconfig.BuilderDockerfile, nil)
	if err != nil {
		t.Fatalf("Select(dockerfile): unexpected error: %v", err)
	}
	if _, ok := b.(*DockerfileBuilder); !ok {
		t.Fatalf("Select(dockerfile) returned %T, want *DockerfileBuilder", b)
	}
}

func TestSelectGoBuilder(t *testing.T) {
	b, err := Select(projectconfig.BuilderGo, nil)
	if err != nil {
		t.Fatalf("Select(go): unexpected error: %v", err)
	}
	if _, ok := b.(*GoBuilder); !ok {
		t.Fatalf("Select(go) returned %T, want *GoBuilder", b)
	}
}

func TestSelectUnknownBuilderType(t *testing.T) {
	if _, err := Select(projectconfig.BuilderType("rust"), nil); err == nil {
		t.Fatal("Select(rust): expected an error for an unregistered builder type, got nil")
	}
}

func TestGoBuilderReturnsUnimplemented(t *testing.T) {
	b := &GoBuilder{}
	_, err := b.Build(context.Background(), "/tmp/build", "demo", "latest")
	if !errors.Is(err, ErrGoBuilderUnimplemented) {
		t.Fatalf("GoBuilder.Build: got %v, want ErrGoBuilderUnimplemented", err)
	}
}
