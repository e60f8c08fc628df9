package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
)

// DeployCmd submits a project directory as a new build, optionally skipping
// the automatic deploy step the agent performs on a successful build.
type DeployCmd struct {
	Dir      string `arg:"" optional:"" default:"." help:"project directory to submit"`
	NoDeploy bool   `help:"build only, skip automatic deployment on success"`
}

type createBuildResponse struct {
	BuildID string `json:"build_id"`
	Status  string `json:"status"`
}

func (c *DeployCmd) Run(cctx *Context) error {
	info, err := os.Stat(c.Dir)
	if err != nil {
		return fmt.Errorf("reading project directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.Dir)
	}

	pipeReader, pipeWriter := io.Pipe()
	go func() {
		pipeWriter.CloseWithError(tarGzDirectory(c.Dir, pipeWriter))
	}()

	url := cctx.AgentAddr + "/builds"
	if c.NoDeploy {
		url += "?deploy=false"
	}

	req, err := http.NewRequest(http.MethodPost, url, pipeReader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/gzip")

	var result createBuildResponse
	if err := doRequest(req, &result); err != nil {
		return err
	}

	fmt.Printf("build submitted: %s (status: %s)\n", result.BuildID, result.Status)
	return nil
}
