// Package api is the typed HTTP client for the Nexora monitoring API.
// Every read returns a `{ "data": ... }` envelope; list endpoints accept
// optional query-string filters.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 30 * time.Second

// Error is a non-2xx response from the API server.
type Error struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// Client issues requests against the monitoring API. Token and tenant
// scope are rewritten on tenant switches while pollers keep issuing
// requests, so access to them is mutex-guarded.
type Client struct {
	baseURL string

	mu       sync.RWMutex
	token    string
	tenantID int64

	httpClient *http.Client
}

// New creates a client for the given base URL. token may be empty for
// unauthenticated local development servers.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// SetTenant scopes subsequent requests to a tenant. Zero clears the scope.
func (c *Client) SetTenant(id int64) {
	c.mu.Lock()
	c.tenantID = id
	c.mu.Unlock()
}

// SetToken replaces the bearer token, e.g. after a tenant profile switch.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// scope returns the token and tenant id for one request.
func (c *Client) scope() (string, int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, c.tenantID
}

// SetHTTPClient swaps the underlying HTTP client. Tests install mock
// transports through this.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// envelope is the `{ "data": T }` wrapper every endpoint responds with.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// errorBody is the server's error response shape.
type errorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// do issues one request and decodes the envelope into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", method, path, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("create request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, tenantID := c.scope()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenantID != 0 {
		req.Header.Set("X-Tenant-ID", strconv.FormatInt(tenantID, 10))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			if eb.Message != "" {
				apiErr.Message = eb.Message
			} else {
				apiErr.Message = eb.Error
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope %s %s: %w", method, path, err)
	}
	if env.Data == nil {
		// Some write endpoints respond with the payload at the top level.
		env.Data = data
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
