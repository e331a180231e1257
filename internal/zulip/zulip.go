// Package zulip provides a client for the subset of the Zulip REST API that
// the MCP server exposes as tools and resources.  Every call is a single
// stateless request/response; the client keeps no state besides the
// connection configuration established at construction time.
package zulip

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
)

const (
	apiPrefix  = "/api/v1"
	userAgent  = "zulipmcp/1.0.0"
	defTimeout = 30 * time.Second
)

// Config holds the connection parameters for a Zulip server.  All three
// fields are required.
type Config struct {
	BaseURL string // server URL, e.g. https://your-org.zulipchat.com
	Email   string // bot or user email presented as the basic auth username
	APIKey  string // API key presented as the basic auth password
}

// validate returns an error enumerating every missing configuration value.
func (c Config) validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "ZULIP_URL")
	}
	if c.Email == "" {
		missing = append(missing, "ZULIP_EMAIL")
	}
	if c.APIKey == "" {
		missing = append(missing, "ZULIP_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.BaseURL, err)
	}
	return nil
}

// Client is an authenticated Zulip API client.  It is safe for concurrent
// use: all fields are set once in New and read-only thereafter.
type Client struct {
	cl      *http.Client
	apiURL  string // <BaseURL>/api/v1
	baseURL string // as configured, used in error messages
	email   string
	apiKey  string
	lg      *slog.Logger
}

// Option is the signature of a Client option-setting function.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(cl *http.Client) Option {
	return func(c *Client) {
		if cl != nil {
			c.cl = cl
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(c *Client) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// New creates a new Client for the given configuration.  It fails if any of
// the required configuration values are missing.
func New(cfg Config, opt ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := &Client{
		cl:      &http.Client{Timeout: defTimeout},
		apiURL:  strings.TrimRight(cfg.BaseURL, "/") + apiPrefix,
		baseURL: cfg.BaseURL,
		email:   cfg.Email,
		apiKey:  cfg.APIKey,
		lg:      slog.Default(),
	}
	for _, o := range opt {
		o(c)
	}
	return c, nil
}

// BaseURL returns the configured server URL.
func (cl *Client) BaseURL() string { return cl.baseURL }

// Email returns the configured account email.
func (cl *Client) Email() string { return cl.email }

// newRequest constructs an authenticated request to path (relative to the
// api/v1 root) with the optional query and body.
func (cl *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := cl.apiURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("request error: %w", err)
	}
	req.SetBasicAuth(cl.email, cl.apiKey)
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do executes the request and decodes a successful response into v (when v
// is not nil).  Transport failures are wrapped into *ConnError, non-2xx
// responses into *APIError.
func (cl *Client) do(req *http.Request, v any) error {
	cl.lg.DebugContext(req.Context(), "zulip: request", "method", req.Method, "url", req.URL.Path)
	resp, err := cl.cl.Do(req)
	if err != nil {
		cl.lg.DebugContext(req.Context(), "zulip: unreachable", "endpoint", cl.baseURL, "error", err)
		return &ConnError{Endpoint: cl.baseURL, Err: err}
	}
	defer resp.Body.Close()
	cl.lg.DebugContext(req.Context(), "zulip: response", "method", req.Method, "url", req.URL.Path, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// get performs a GET request to path with the given query.
func (cl *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	req, err := cl.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return cl.do(req, v)
}

// postJSON performs a POST request with a JSON-encoded body.
func (cl *Client) postJSON(ctx context.Context, path string, payload any, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("request error: encoding body: %w", err)
	}
	req, err := cl.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	return cl.do(req, v)
}

// postForm performs a POST request with a form-encoded body.
func (cl *Client) postForm(ctx context.Context, path string, form url.Values, v any) error {
	req, err := cl.newRequest(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return err
	}
	return cl.do(req, v)
}

// patchJSON performs a PATCH request with a JSON-encoded body.
func (cl *Client) patchJSON(ctx context.Context, path string, payload any, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("request error: encoding body: %w", err)
	}
	req, err := cl.newRequest(ctx, http.MethodPatch, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	return cl.do(req, v)
}

// delete performs a DELETE request to path with the given query.
func (cl *Client) delete(ctx context.Context, path string, query url.Values, v any) error {
	req, err := cl.newRequest(ctx, http.MethodDelete, path, query, nil, "")
	if err != nil {
		return err
	}
	return cl.do(req, v)
}
