package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mdb/pkg/logging"
)

// DefaultTimeout is the per-attempt timeout when none is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBodySize caps how much of a failed response is read.
const maxErrorBodySize = 64 * 1024

// HeaderSource supplies the headers of authorized requests.
type HeaderSource interface {
	AuthorizedHeaders() (http.Header, error)
}

// Invalidator is told when the backend rejects the credentials of an
// authorized request.
type Invalidator interface {
	Invalidate(ctx context.Context, cause error)
}

// Options control a single request.
type Options struct {
	// Authorized requests carry the headers of the HeaderSource. A missing
	// token aborts the request before any network I/O.
	Authorized bool

	// Header is merged into the request headers.
	Header http.Header
}

// Client calls the MDB backend.
type Client struct {
	baseURL     string
	timeout     time.Duration
	httpClient  *http.Client
	headers     HeaderSource
	invalidator Invalidator
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeaderSource sets where authorized requests get their headers from.
func WithHeaderSource(source HeaderSource) ClientOption {
	return func(c *Client) {
		c.headers = source
	}
}

// WithInvalidator sets who is told about rejected credentials.
func WithInvalidator(invalidator Invalidator) ClientOption {
	return func(c *Client) {
		c.invalidator = invalidator
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		timeout:    DefaultTimeout,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET and decodes the JSON response into out (if non-nil).
// A Network or ServerError failure is retried once.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, opts Options) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	err := c.do(ctx, http.MethodGet, path, nil, out, opts)
	if err == nil || ctx.Err() != nil || !KindOf(err).Retryable() {
		return err
	}

	logging.Debug("API", "Retrying GET %s after %s failure", path, KindOf(err))
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

// Post sends body as JSON and decodes the response into out (if non-nil).
// POSTs are never retried.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts Options) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return c.do(ctx, http.MethodPost, path, payload, out, opts)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any, opts Options) error {
	header := http.Header{}
	if opts.Authorized {
		if c.headers == nil {
			return fmt.Errorf("%s %s: no header source configured for authorized request", method, path)
		}
		authHeader, err := c.headers.AuthorizedHeaders()
		if err != nil {
			return err
		}
		mergeHeader(header, authHeader)
	}
	mergeHeader(header, opts.Header)

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	mergeHeader(req.Header, header)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logging.Debug("API", "%s %s (request_id=%s)", method, path, req.Header.Get("X-Request-ID"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{
			Kind:   ClassifyStatus(resp.StatusCode),
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   readErrorBody(resp.Body),
		}
		c.report(ctx, apiErr, opts)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		// A body cut off by the deadline is still a timeout.
		if reqCtx.Err() != nil {
			return &Error{Kind: KindNetwork, Method: method, Path: path, Status: resp.StatusCode, Err: err}
		}
		return &Error{Kind: KindOther, Method: method, Path: path, Status: resp.StatusCode,
			Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// report logs the failure and invalidates the session on rejected credentials.
func (c *Client) report(ctx context.Context, apiErr *Error, opts Options) {
	if apiErr.Body != nil && len(apiErr.Body.Errors) > 0 {
		logging.Warn("API", "Validation errors for %s %s: %v", apiErr.Method, apiErr.Path, apiErr.Body.Errors)
	}
	logging.Debug("API", "%s %s failed: status=%d kind=%s message=%q",
		apiErr.Method, apiErr.Path, apiErr.Status, apiErr.Kind, apiErr.UserMessage())

	if apiErr.Kind == KindUnauthorized && opts.Authorized && c.invalidator != nil {
		c.invalidator.Invalidate(ctx, apiErr)
	}
}

func readErrorBody(r io.Reader) *ErrorBody {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var body ErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return nil
	}
	return &body
}

func mergeHeader(dst, src http.Header) {
	for k, values := range src {
		for _, v := range values {
			dst.Add(k, v)
		}
	}
}
