package main

import (
	"fmt"
	"net/http"
)

type deploymentView struct {
	ID            string  `json:"id"`
	BuildID       string  `json:"build_id"`
	App           string  `json:"app"`
	Image         string  `json:"image"`
	Status        string  `json:"status"`
	ContainerID   *string `json:"container_id,omitempty"`
	ContainerName *string `json:"container_name,omitempty"`
	Address       *string `json:"address,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// DeploymentCmd shows a single deployment by ID.
type DeploymentCmd struct {
	ID string `arg:"" help:"deployment ID"`
}

func (c *DeploymentCmd) Run(cctx *Context) error {
	req, err := http.NewRequest(http.MethodGet, cctx.AgentAddr+"/deployments/"+c.ID, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	var result deploymentView
	if err := doRequest(req, &result); err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", result.ID)
	fmt.Printf("Build ID: %s\n", result.BuildID)
	fmt.Printf("App:      %s\n", result.App)
	fmt.Printf("Image:    %s\n", result.Image)
	fmt.Printf("Status:   %s\n", result.Status)
	if result.Address != nil {
		fmt.Printf("Address:  %s\n", *result.Address)
	}
	return nil
}
