// Package api is the JSON-over-HTTP client shared by the provider adapters.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"watchlist-news/internal/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "watchlist-news/1.0"
	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes     = 8 << 20
)

type Client struct {
	http    *http.Client
	baseURL string
	headers http.Header
	verbose bool
}

// ClientOption configures the API client
type ClientOption func(*Client)

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

// WithBaseURL sets the prefix for relative request paths.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHeader sets a header sent on every request. Empty values are ignored.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		if value != "" {
			c.headers.Set(key, value)
		}
	}
}

// WithLogging turns on per-request debug lines.
func WithLogging(enabled bool) ClientOption {
	return func(c *Client) {
		c.verbose = enabled
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		headers: http.Header{},
	}
	c.headers.Set("User-Agent", defaultUserAgent)
	c.headers.Set("Accept", "application/json")
	c.headers.Set("Accept-Language", "en-US,en;q=0.9")

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for responses with status >= 400.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.Path, body)
}

// Request is a single call. Path may be relative to the client's base URL
// or an absolute http(s) URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
}

func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path, Query: url.Values{}, Headers: map[string]string{}}
}

// WithQuery sets a query parameter. Empty values are skipped.
func (r *Request) WithQuery(key, value string) *Request {
	if value != "" {
		r.Query.Set(key, value)
	}
	return r
}

func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// URL renders the request against baseURL.
func (r *Request) URL(baseURL string) string {
	u := r.Path
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = baseURL + u
	}
	if len(r.Query) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + r.Query.Encode()
}

type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return nil
}

func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL(c.baseURL), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	for key := range c.headers {
		httpReq.Header.Set(key, c.headers.Get(key))
	}
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	started := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Query strings may carry API keys, so only the path is logged.
	if c.verbose {
		logger.Debug(ctx, "HTTP call",
			"method", req.Method,
			"path", httpReq.URL.Path,
			"status", httpResp.StatusCode,
			"duration_ms", time.Since(started).Milliseconds(),
			"bytes", len(body))
	}

	if httpResp.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Path: httpReq.URL.Path, Body: string(body)}
	}
	return &Response{StatusCode: httpResp.StatusCode, Body: body, Headers: httpResp.Header}, nil
}

// GET issues a GET; the optional map adds per-request headers.
func (c *Client) GET(ctx context.Context, path string, query url.Values, headers ...map[string]string) (*Response, error) {
	req := NewRequest(http.MethodGet, path)
	for key := range query {
		req.WithQuery(key, query.Get(key))
	}
	for _, h := range headers {
		for key, value := range h {
			req.WithHeader(key, value)
		}
	}
	return c.Do(ctx, req)
}

func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v any, headers ...map[string]string) error {
	resp, err := c.GET(ctx, path, query, headers...)
	if err != nil {
		return err
	}
	return resp.JSON(v)
}
