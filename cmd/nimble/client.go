package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// apiError mirrors the {"error": "..."} body written by writeError on the
// agent side.
type apiError struct {
	Error string `json:"error"`
}

// doRequest performs req, decodes a JSON error body on non-2xx responses
// into a Go error, and otherwise decodes the body into out.
func doRequest(req *http.Request, out any) error {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting agent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error != "" {
			return fmt.Errorf("agent returned %s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("agent returned %s: %s", resp.Status, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
