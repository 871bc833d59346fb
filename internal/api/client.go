package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	statusesPath  = "/api/tanks/statuses"
	movementsPath = "/api/movements"
)

// Client talks to the remote inventory authority.
type Client struct {
	baseURL string
	hc      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. Used by tests and by
// hosts that need custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// NewClient creates a client for the authority at baseURL
// (e.g. "https://inventory.example.com").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchStatuses fetches the authoritative status snapshot.
//
// Transport failures and non-2xx responses are returned as errors;
// malformed bodies are a parse failure, never a partial snapshot.
func (c *Client) FetchStatuses(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build statuses request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tank statuses: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read statuses response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServerError{Endpoint: statusesPath, StatusCode: resp.StatusCode, Body: string(body)}
	}

	snap, err := ParseSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("parse statuses response: %w", err)
	}
	return snap, nil
}

// PostMovement submits one movement body under the given bearer token.
//
// The body is posted verbatim, which lets queued submissions replay the
// exact bytes of the attempt that failed. Non-2xx responses come back as
// *ServerError with the response body included for diagnostics.
func (c *Client) PostMovement(ctx context.Context, body json.RawMessage, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+movementsPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build movement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("post movement: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServerError{Endpoint: movementsPath, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}
