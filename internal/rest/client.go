// Package rest implements the backend collaborators (auth, step
// submissions, feed, pincode lookup) over the HTTP API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/doyensec/safeurl"

	"github.com/devesh-qurilo/truepadosi/pkg/api"
)

const defaultTimeout = 15 * time.Second

// maxResponseSize caps how much of a response body is read; backend
// envelopes are small and anything larger indicates a broken server.
const maxResponseSize = 1 << 20

// Client talks to the backend REST API. It implements api.AuthAPI,
// api.StepAPI and api.FeedAPI.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point the client at an httptest server; the SSRF-safe default blocks
// loopback addresses.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the request timeout of the default SSRF-safe client.
// It has no effect when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for the given base URL (e.g.
// "https://backend.example.com/api/v1"). The default transport is an
// SSRF-safe client that refuses private, loopback and link-local targets.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		cfg := safeurl.GetConfigBuilder().
			SetTimeout(timeout).
			SetAllowedSchemes("http", "https").
			SetAllowedPorts(80, 443).
			Build()
		c.http = safeurl.Client(cfg).Client
	}
	return c
}

// envelope is the backend's common response shape. Endpoint-specific fields
// are decoded separately from the raw body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// doJSON sends a JSON request and decodes the response body into out (when
// out is non-nil). Backend failures are mapped onto the api error taxonomy:
// 401/403 become SessionError, everything else non-2xx (or success=false)
// becomes NetworkError carrying the server's message.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, token string, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, token, out)
}

// do finishes common headers, executes the request, and maps the response.
func (c *Client) do(req *http.Request, token string, out any) error {
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := api.RequestIDFromContext(req.Context()); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &api.NetworkError{Message: "server unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &api.NetworkError{StatusCode: resp.StatusCode, Message: "reading response failed", Err: err}
	}

	var env envelope
	// The envelope is best effort: a non-JSON error page still maps onto the
	// right error type below.
	_ = json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		msg := env.Message
		if msg == "" {
			msg = "session expired; please log in again"
		}
		return &api.SessionError{Message: msg}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("server error: %s", resp.Status)
		}
		return &api.NetworkError{StatusCode: resp.StatusCode, Message: msg}
	case !env.Success:
		msg := env.Message
		if msg == "" {
			msg = "request rejected by server"
		}
		return &api.NetworkError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &api.NetworkError{StatusCode: resp.StatusCode, Message: "server returned malformed response", Err: err}
		}
	}
	return nil
}
