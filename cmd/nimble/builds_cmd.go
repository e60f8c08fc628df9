package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"
)

// BuildsCmd lists recent builds, optionally filtered by status.
type BuildsCmd struct {
	Status string `help:"filter by build status (queued, building, success, failed)"`
	Limit  int    `default:"20" help:"maximum number of builds to show"`
}

func (c *BuildsCmd) Run(cctx *Context) error {
	query := url.Values{}
	if c.Status != "" {
		query.Set("status", c.Status)
	}
	if c.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", c.Limit))
	}

	reqURL := cctx.AgentAddr + "/builds"
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	var results []buildView
	if err := doRequest(req, &results); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUILD ID\tSTATUS\tCREATED AT")
	for _, b := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Status, b.CreatedAt)
	}
	return w.Flush()
}
