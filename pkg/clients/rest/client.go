// Package rest is the JSON-over-HTTP transport shared by the upstream API
// clients.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/extract"
)

// Response is a fully read upstream response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client sends requests to one upstream base URL with fixed headers
type Client struct {
	service    string
	baseURL    string
	headers    http.Header
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the overall per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHeader adds a header sent with every request
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// New creates a Client. service names the upstream in errors and logs.
func New(service, baseURL string, opts ...Option) *Client {
	c := &Client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		headers:    http.Header{},
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body to endpoint (relative to the base URL) and reads the whole
// response. Non-2xx statuses are returned as a Response, not an error.
func (c *Client) Do(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*Response, error) {
	target := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: error creating request", c.service)
	}
	for k, vals := range c.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: error calling %s %s", c.service, method, endpoint)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: error reading response", c.service)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       respBody,
		Duration:   time.Since(start),
	}

	zap.L().Debug("upstream call",
		zap.String("service", c.service),
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", out.StatusCode),
		zap.Duration("duration", out.Duration),
	)
	return out, nil
}

// PostJSON marshals payload and POSTs it to endpoint
func (c *Client) PostJSON(ctx context.Context, endpoint string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "%s: error creating payload", c.service)
	}
	return c.Do(ctx, http.MethodPost, endpoint, nil, body)
}

// APIError is a non-2xx upstream response
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("error from %s API (status %d): %s", e.Service, e.StatusCode, e.Message)
}

var messagePaths = extract.Paths(
	"$.errorMessage",
	"$.message",
	"$.error",
	"$.response.errors[0].msg",
	"$.errors[0].msg",
	"$.errors[0].message",
)

// NewAPIError builds an APIError carrying the upstream's own message when
// one can be found in the body.
func (c *Client) NewAPIError(resp *Response) *APIError {
	msg, ok := extract.FirstFromBody(resp.Body, messagePaths)
	if !ok {
		msg = strings.TrimSpace(string(resp.Body))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Service: c.service, StatusCode: resp.StatusCode, Message: msg}
}
