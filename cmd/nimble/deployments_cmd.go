package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
)

// DeploymentsCmd lists recent deployments, optionally filtered by build ID.
type DeploymentsCmd struct {
	BuildID string `help:"filter by build ID"`
}

func (c *DeploymentsCmd) Run(cctx *Context) error {
	query := url.Values{}
	if c.BuildID != "" {
		query.Set("build_id", c.BuildID)
	}

	reqURL := cctx.AgentAddr + "/deployments"
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	var results []deploymentView
	if err := doRequest(req, &results); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DEPLOYMENT ID\tAPP\tSTATUS\tADDRESS")
	for _, d := range results {
		address := ""
		if d.Address != nil {
			address = *d.Address
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.App, d.Status, address)
	}
	return w.Flush()
}
