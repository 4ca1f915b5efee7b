// Package store mirrors the remote module store registry.
//
// The Client fetches catalog and per-module snapshots over HTTP; the
// Mirror caches the catalog in memory, refreshes it on an interval, and
// notifies registered listeners after every successful refresh. Remote
// failures are transient by design: they are logged and the previous
// snapshot stays in place.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/connhub/console/internal/shared/types"
)

// Client is the HTTP client for the remote store registry API.
type Client struct {
	http *resty.Client
}

// ClientConfig defines store client settings.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a store registry client with a retrying transport.
func NewClient(cfg ClientConfig) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil // retries are visible in caller logs

	httpClient := resty.NewWithClient(retryClient.StandardClient()).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "ConnHub-Console/1.0")

	return &Client{http: httpClient}
}

// Catalog fetches the full store catalog.
func (c *Client) Catalog(ctx context.Context) (*types.Catalog, error) {
	var out types.Catalog

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/catalog")
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status())
	}

	return &out, nil
}

// ModuleInfo fetches the store-info snapshot for one module.
func (c *Client) ModuleInfo(ctx context.Context, moduleID string) (*types.ModuleStoreInfo, error) {
	if moduleID == "" {
		return nil, fmt.Errorf("module id is required")
	}

	var out types.ModuleStoreInfo

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetPathParam("id", moduleID).
		Get("/modules/{id}")
	if err != nil {
		return nil, fmt.Errorf("fetch module info %s: %w", moduleID, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch module info %s: unexpected status %s", moduleID, resp.Status())
	}

	out.ModuleID = moduleID
	return &out, nil
}
