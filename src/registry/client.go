// Package registry discovers tool specifications from the spec-store service
// and builds the invokable tool set the host runs with.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/itapia/agent-host/src/spec"
)

// Client talks to the registry service's read-only HTTP surface.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a registry client for the given base URL
// (e.g. "http://registry:8000/api/v1").
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// ListTools fetches every published tool specification.
func (c *Client) ListTools(ctx context.Context) ([]spec.ToolSpec, error) {
	var specs []spec.ToolSpec
	if err := c.getJSON(ctx, "/tools", &specs); err != nil {
		return nil, err
	}
	return specs, nil
}

// ListProviders fetches the provider configurations.
func (c *Client) ListProviders(ctx context.Context) ([]spec.ProviderSpec, error) {
	var providers []spec.ProviderSpec
	if err := c.getJSON(ctx, "/providers", &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("registry %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry %s: HTTP %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("registry %s: decode: %w", path, err)
	}
	return nil
}
