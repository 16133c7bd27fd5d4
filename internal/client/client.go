// Package client implements the REST data-access layer: one function per
// backend operation, returning canonical shapes via the adapter. Failure
// policy follows the UI's needs: listing reads degrade to empty results so
// a browsing page never crashes, while single reads and mutations surface
// one normalized human-readable message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lostfound/internal/query"
)

// Client issues REST calls against the backend boundary. The base URL is
// the only configuration and is read once at construction.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a normalized backend failure. Status is zero for transport
// errors that never produced a response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorMessage extracts a human-readable message from a structured error
// body. FastAPI-style backends use "detail", others "error" or "message";
// anything else gets a generic network-error string.
func errorMessage(status int, body []byte) string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err == nil {
		for _, key := range []string{"detail", "error", "message"} {
			if msg, ok := raw[key]; ok {
				var s string
				if err := json.Unmarshal(msg, &s); err == nil && s != "" {
					return s
				}
			}
		}
	}
	return fmt.Sprintf("network error (%d %s)", status, http.StatusText(status))
}

// do issues one request and returns the response body, normalizing
// failures: transport errors become a generic APIError, 404s map to
// ErrNotFound, other error statuses carry the extracted message.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	endpoint := c.base + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: "network error"}
	}
	defer resp.Body.Close()

	slog.Info("request completed", "method", method, "path", path, "status", resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: "network error"}
	}

	if resp.StatusCode >= 400 {
		msg := errorMessage(resp.StatusCode, data)
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", query.ErrNotFound, msg)
		}
		return nil, &APIError{Status: resp.StatusCode, Message: msg}
	}

	return data, nil
}
