package main

import (
	"fmt"
	"net/http"
)

type buildView struct {
	ID        string `json:"build_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// BuildCmd shows a single build by ID.
type BuildCmd struct {
	ID string `arg:"" help:"build ID"`
}

func (c *BuildCmd) Run(cctx *Context) error {
	req, err := http.NewRequest(http.MethodGet, cctx.AgentAddr+"/builds/"+c.ID, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	var result buildView
	if err := doRequest(req, &result); err != nil {
		return err
	}

	fmt.Printf("ID:         %s\n", result.ID)
	fmt.Printf("Status:     %s\n", result.Status)
	fmt.Printf("Created At: %s\n", result.CreatedAt)
	fmt.Printf("Updated At: %s\n", result.UpdatedAt)
	return nil
}
