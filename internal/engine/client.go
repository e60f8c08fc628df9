// Package engine is the agent's one point of contact with the local
// container engine. Connectivity is verified once at startup via the
// Docker SDK's lightweight ping; the actual build/run/port/remove
// operations documented in the external interface contract are driven as
// `docker` CLI subprocesses in exec.go, since the contract is an exact
// argv shape the SDK's container-mutation surface does not expose.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	dockerSDKclient "github.com/docker/docker/client"
)

// Client wraps the Docker SDK client (used only for the startup
// connectivity check) and runs CLI subprocesses for everything else.
type Client struct {
	sdk    *dockerSDKclient.Client
	logger *slog.Logger
}

// NewClient connects to the Docker daemon using the default discovery
// rules (DOCKER_HOST, DOCKER_TLS_VERIFY, DOCKER_CERT_PATH, falling back to
// the Unix socket) and pings it to fail fast if the engine is unreachable.
func NewClient(logger *slog.Logger) (*Client, error) {
	sdkClient, err := dockerSDKclient.NewClientWithOpts(
		dockerSDKclient.FromEnv,
		dockerSDKclient.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker sdk client: %w", err)
	}

	client := &Client{sdk: sdkClient, logger: logger}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.sdk.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("docker daemon unreachable: %w", err)
	}

	logger.Info("engine client connected", "host", sdkClient.DaemonHost())
	return client, nil
}

// Close releases the underlying Docker SDK client connection.
func (c *Client) Close() error {
	return c.sdk.Close()
}
