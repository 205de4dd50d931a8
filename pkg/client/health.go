package client

import (
	"context"
	"net/http"
)

// Health reports whether the API process is up
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ready reports whether the API can reach its database. A server that is
// up but not ready returns an *APIError with status 503.
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	var ready HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, &ready); err != nil {
		return nil, err
	}
	return &ready, nil
}
