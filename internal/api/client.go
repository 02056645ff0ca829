// Package api provides the authenticated HTTP layer for the MobileLink API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultBaseURL is the MobileLink data API root.
const DefaultBaseURL = "https://app.mobilelinkgen.com/api"

// ErrSessionExpired signals that the data API no longer accepts the current
// session. The vendor uses non-200 as its universal "not authenticated" answer,
// so every non-200/204 data response maps onto this sentinel. The orchestrator
// catches it exactly once and relogs in.
var ErrSessionExpired = errors.New("session expired")

// TransportError wraps a network-level failure or an unexpected payload shape.
// It is distinct from ErrSessionExpired and never triggers the relogin retry.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mobilelink request %s: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues authenticated GETs against the MobileLink data API and
// classifies the responses. Headers are fixed per auth mode at construction;
// the CSRF token slot is filled in by the login flow.
type Client struct {
	baseURL    string
	headers    map[string]string
	csrf       string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a data API client. The http.Client is shared with the
// login flow so that session cookies established there are sent here too.
func NewClient(baseURL string, headers map[string]string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: httpClient,
		logger:     logger,
	}
}

// SetCSRF stores the anti-forgery token captured during login. Once set it is
// attached to every subsequent request.
func (c *Client) SetCSRF(token string) { c.csrf = token }

// Headers returns a copy of the mode-specific request headers.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// Fetch performs one authenticated GET against path and classifies the result:
// a JSON payload, no data (204: nil payload, nil error), ErrSessionExpired for
// any other non-200, or a TransportError for network/decoding failures.
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.csrf != "" {
		req.Header.Set("X-Csrf-Token", c.csrf)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		c.logger.Debug("No data", "path", path)
		return nil, nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: err}
	}

	if res.StatusCode != http.StatusOK {
		c.logger.Debug("Non-200 from data endpoint", "path", path, "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("GET %s returned status %d: %w", path, res.StatusCode, ErrSessionExpired)
	}

	if !json.Valid(body) {
		c.logger.Debug("Invalid JSON from data endpoint", "path", path, "body", string(body))
		return nil, &TransportError{Path: path, Err: errors.New("response body is not valid JSON")}
	}

	c.logger.Debug("Data response", "path", path, "bytes", len(body))
	return body, nil
}
