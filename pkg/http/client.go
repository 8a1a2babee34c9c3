package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"titandash/pkg/flags"
)

const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodDelete = http.MethodDelete
	MethodPatch  = http.MethodPatch
)

// StatusTimeout and StatusNetwork are the synthetic status codes used
// for failures that never produced an HTTP response.
const (
	StatusTimeout = http.StatusRequestTimeout
	StatusNetwork = 0
)

// HTTPError is the single failure shape every outbound call collapses
// into: timeouts carry status 408, transport failures status 0, and
// upstream rejections their actual status code.
type HTTPError struct {
	Message string
	Status  int
	Data    map[string]interface{}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsTimeout reports whether the error is the client-side timeout.
func (e *HTTPError) IsTimeout() bool { return e.Status == StatusTimeout }

// TokenProvider supplies a bearer token for outbound requests, or ""
// when no credentials are available.
type TokenProvider func() string

// ClientOption configures Client.
type ClientOption func(*Client)

// RequestOptions holds per-request parameters. Zero values fall back
// to policy defaults.
type RequestOptions struct {
	Method  string
	Params  map[string]string
	Headers map[string]string
	Body    interface{}
	Timeout time.Duration
}

// Client is the single outbound request primitive: per-request timeout
// via context cancellation, bounded retry on transient server errors,
// and uniform error normalization.
type Client struct {
	baseURL string
	policy  flags.Policy
	hc      *http.Client
	token   TokenProvider
	sleep   func(time.Duration)
}

// NewClient creates a client for the given origin.
func NewClient(baseURL string, policy flags.Policy, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		policy:  policy,
		hc:      &http.Client{},
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokenProvider attaches bearer-token credentials.
func WithTokenProvider(tp TokenProvider) ClientOption {
	return func(c *Client) { c.token = tp }
}

// WithHTTPClient overrides the underlying transport.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.hc = hc }
}

// WithSleep overrides the backoff sleeper. Tests use this to avoid
// real delays.
func WithSleep(sleep func(time.Duration)) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

// ShouldRetry is the retry policy as a pure function: retry only when
// retries are enabled, the status is a transient server error (502 or
// 503), and the retry budget is not exhausted. retries counts the
// retries already performed.
func ShouldRetry(retries, status int, p flags.Policy) bool {
	if !p.RetryEnabled {
		return false
	}
	if status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		return false
	}
	return retries < p.MaxRetries
}

// Backoff returns the linear delay before retry number retries+1.
func Backoff(retries int) time.Duration {
	return time.Duration(retries+1) * time.Second
}

// Request performs one logical request, retrying on 502/503 per the
// policy, and returns the raw JSON body.
func (c *Client) Request(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	for retries := 0; ; retries++ {
		body, _, err := c.attempt(ctx, path, opts)
		if err == nil {
			return body, nil
		}
		var herr *HTTPError
		if !errors.As(err, &herr) || !ShouldRetry(retries, herr.Status, c.policy) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, normalizeTransportError(ctx.Err(), c.timeoutFor(opts))
		default:
		}
		c.sleep(Backoff(retries))
	}
}

// GetJSON performs a GET and decodes the response into dest.
func (c *Client) GetJSON(ctx context.Context, path string, params map[string]string, dest interface{}) error {
	raw, err := c.Request(ctx, path, &RequestOptions{Method: MethodGet, Params: params})
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &HTTPError{
			Message: fmt.Sprintf("decode response: %v", err),
			Status:  StatusNetwork,
			Data:    map[string]interface{}{"originalError": err.Error()},
		}
	}
	return nil
}

func (c *Client) timeoutFor(opts *RequestOptions) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	if c.policy.Timeout > 0 {
		return c.policy.Timeout
	}
	return flags.DefaultTimeout
}

// attempt performs a single HTTP round trip. status is the HTTP status
// the server answered with, or 0/408 for transport-level failures.
func (c *Client) attempt(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, int, error) {
	timeout := c.timeoutFor(opts)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := c.buildRequest(ctx, path, opts)
	if err != nil {
		return nil, StatusNetwork, &HTTPError{Message: err.Error(), Status: StatusNetwork}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		herr := normalizeTransportError(err, timeout)
		return nil, herr.Status, herr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		herr := normalizeTransportError(err, timeout)
		return nil, herr.Status, herr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, errorFromResponse(resp.StatusCode, body)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) buildRequest(ctx context.Context, path string, opts *RequestOptions) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(opts.Params) > 0 {
		q := u.Query()
		for key, value := range opts.Params {
			if value == "" {
				continue
			}
			q.Set(key, value)
		}
		u.RawQuery = q.Encode()
	}

	method := opts.Method
	if method == "" {
		method = MethodGet
	}

	body, err := encodeBody(method, opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func encodeBody(method string, body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	if method != MethodPost && method != MethodPut && method != MethodPatch {
		return nil, nil
	}
	switch v := body.(type) {
	case []byte:
		return bytes.NewReader(v), nil
	case string:
		return bytes.NewReader([]byte(v)), nil
	default:
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		return bytes.NewReader(b), nil
	}
}

// errorFromResponse builds an HTTPError from a non-2xx response,
// preferring a JSON error body's message over raw text.
func errorFromResponse(status int, body []byte) *HTTPError {
	data := map[string]interface{}{}
	msg := fmt.Sprintf("HTTP Error %d", status)
	if err := json.Unmarshal(body, &data); err == nil {
		if m, ok := data["message"].(string); ok && m != "" {
			msg = m
		} else if m, ok := data["error"].(string); ok && m != "" {
			msg = m
		}
	} else if len(body) > 0 {
		msg = string(body)
		data = map[string]interface{}{"message": msg}
	}
	return &HTTPError{Message: msg, Status: status, Data: data}
}

// normalizeTransportError maps transport-level failures into the
// uniform error shape: deadline hits become 408 with a timeout marker,
// everything else status 0.
func normalizeTransportError(err error, timeout time.Duration) *HTTPError {
	if isTimeout(err) {
		return &HTTPError{
			Message: fmt.Sprintf("Request timeout after %dms", timeout.Milliseconds()),
			Status:  StatusTimeout,
			Data:    map[string]interface{}{"timeout": true},
		}
	}
	return &HTTPError{
		Message: err.Error(),
		Status:  StatusNetwork,
		Data:    map[string]interface{}{"originalError": err.Error()},
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
