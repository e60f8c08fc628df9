package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Timeouts for the individual docker subprocess calls. docker build can
// legitimately run for minutes; the rest are expected to return quickly.
const (
	BuildTimeout  = 10 * time.Minute
	QuickCallTimeout = 30 * time.Second
)

// ErrBuildFailed, ErrRunFailed, and ErrPortLookupFailed are the sentinel
// errors corresponding to the BuildFailed/RunFailed/PortLookupFailed error
// kinds. Callers use errors.Is to recognize them; the wrapped message
// carries the engine's stderr for logging.
var (
	ErrBuildFailed      = errors.New("container image build failed")
	ErrRunFailed        = errors.New("container failed to start")
	ErrPortLookupFailed = errors.New("container port lookup failed")
)

// Image is the result of a successful Builder Strategy invocation.
type Image struct {
	Reference string
	Digest    *string
}

// Build runs `docker build` against buildPath/Dockerfile, tagging the
// result imageName:imageTag. Digest lookup is best-effort: its failure
// never fails the build, it only leaves Digest unset.
func (c *Client) Build(ctx context.Context, buildPath, imageName, imageTag string) (Image, error) {
	dockerfilePath := filepath.Join(buildPath, "Dockerfile")
	if _, err := os.Stat(dockerfilePath); err != nil {
		return Image{}, fmt.Errorf("%w: Dockerfile not found at %q", ErrBuildFailed, dockerfilePath)
	}

	imageRef := fmt.Sprintf("%s:%s", imageName, imageTag)

	buildCtx, cancel := context.WithTimeout(ctx, BuildTimeout)
	defer cancel()

	_, stderr, err := run(buildCtx, "docker", "build", "--tag", imageRef, "--file", dockerfilePath, buildPath)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %s", ErrBuildFailed, stderr)
	}

	digest, err := c.imageDigest(ctx, imageRef)
	if err != nil {
		c.logger.Warn("digest lookup failed, continuing without one", "image", imageRef, "error", err)
		digest = nil
	}

	return Image{Reference: imageRef, Digest: digest}, nil
}

// imageDigest attempts `docker inspect --format={{index .RepoDigests 0}}`,
// falling back to the image ID via `--format={{.Id}}` when the repo digest
// is empty (e.g. the image was never pushed to a registry).
func (c *Client) imageDigest(ctx context.Context, imageRef string) (*string, error) {
	inspectCtx, cancel := context.WithTimeout(ctx, QuickCallTimeout)
	defer cancel()

	stdout, stderr, err := run(inspectCtx, "docker", "inspect", "--format={{index .RepoDigests 0}}", imageRef)
	if err != nil {
		return nil, fmt.Errorf("docker inspect (repo digest) failed: %s", stderr)
	}

	output := strings.TrimSpace(stdout)
	if output != "" && strings.Contains(output, "@") {
		digest := output[strings.Index(output, "@")+1:]
		return &digest, nil
	}

	idCtx, cancelID := context.WithTimeout(ctx, QuickCallTimeout)
	defer cancelID()

	idOutput, idStderr, err := run(idCtx, "docker", "inspect", "--format={{.Id}}", imageRef)
	if err != nil {
		return nil, fmt.Errorf("docker inspect (image id) failed: %s", idStderr)
	}
	id := strings.TrimSpace(idOutput)
	if id == "" {
		return nil, fmt.Errorf("docker inspect returned no image id for %q", imageRef)
	}
	return &id, nil
}

// Run starts imageRef detached, publishing appPort to an ephemeral host
// port and attaching the given labels, returning the new container's id.
func (c *Client) Run(ctx context.Context, imageRef, containerName string, appPort int, labels map[string]string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, QuickCallTimeout)
	defer cancel()

	args := []string{
		"run", "-d",
		"-p", fmt.Sprintf("0:%d", appPort),
		"--name", containerName,
	}
	for key, value := range labels {
		args = append(args, "--label", fmt.Sprintf("%s=%s", key, value))
	}
	args = append(args, imageRef)

	stdout, stderr, err := run(runCtx, "docker", args...)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrRunFailed, stderr)
	}

	containerID := strings.TrimSpace(stdout)
	if containerID == "" {
		return "", fmt.Errorf("%w: docker run succeeded but returned no container id", ErrRunFailed)
	}

	return containerID, nil
}

// Port queries the host port published for appPort/tcp on containerName.
// It returns ok=false (no error) if no mapping is published yet.
func (c *Client) Port(ctx context.Context, containerName string, appPort int) (hostPort string, ok bool, err error) {
	portCtx, cancel := context.WithTimeout(ctx, QuickCallTimeout)
	defer cancel()

	stdout, stderr, err := run(portCtx, "docker", "port", containerName, fmt.Sprintf("%d/tcp", appPort))
	if err != nil {
		return "", false, fmt.Errorf("%w: %s", ErrPortLookupFailed, stderr)
	}

	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, ":")
		if idx == -1 {
			continue
		}
		port := strings.TrimSpace(line[idx+1:])
		if _, err := strconv.Atoi(port); err == nil {
			return port, true, nil
		}
	}

	return "", false, nil
}

// Remove force-removes a container by id or name. A "no such container"
// failure is treated as success, since the goal state — no container with
// that reference — already holds.
func (c *Client) Remove(ctx context.Context, containerRef string) error {
	removeCtx, cancel := context.WithTimeout(ctx, QuickCallTimeout)
	defer cancel()

	_, stderr, err := run(removeCtx, "docker", "rm", "-f", containerRef)
	if err != nil {
		if strings.Contains(strings.ToLower(stderr), "no such container") {
			return nil
		}
		return fmt.Errorf("docker rm failed for %q: %s", containerRef, stderr)
	}
	return nil
}

// run executes a docker subprocess, returning its raw stdout, trimmed
// stderr, and any execution error (including a non-zero exit status).
func run(ctx context.Context, name string, args ...string) (stdout string, stderr string, err error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.String(), strings.TrimSpace(stderrBuf.String()), err
}
