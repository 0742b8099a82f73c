// Package netx holds HTTP helpers for the CLI.
package netx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CheckHealth calls the server's HTTP health probe and returns the reported
// status.
func CheckHealth(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return "", fmt.Errorf("health check failed: %s; body: %s", resp.Status, string(b))
	}

	var body struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode health response: %w", err)
	}
	return body.Data.Status, nil
}
