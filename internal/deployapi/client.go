// Package deployapi is the client for the hosted token deploy service.
package deployapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/tokenforge/internal/config"
	"github.com/Mohsinsiddi/tokenforge/internal/logging"
	"github.com/Mohsinsiddi/tokenforge/internal/wallet"
)

// KeyGenerator creates the disposable deployer key sent with each deploy.
type KeyGenerator interface {
	Generate() (*wallet.EphemeralKey, error)
}

// KeyGeneratorFunc adapts a function to KeyGenerator.
type KeyGeneratorFunc func() (*wallet.EphemeralKey, error)

func (f KeyGeneratorFunc) Generate() (*wallet.EphemeralKey, error) { return f() }

// Client talks to the deploy API. It is safe for concurrent use.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	keys    KeyGenerator
	lggr    logging.Logger

	pendingDelay time.Duration
	errorDelay   time.Duration
	pollAttempts uint

	mu       sync.Mutex
	networks []Network // nil until the first successful fetch
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout bounds every request. Default 60 s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithKeyGenerator replaces the deployer key source.
func WithKeyGenerator(g KeyGenerator) Option {
	return func(c *Client) { c.keys = g }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.lggr = l }
}

// WithPolling sets the WaitForTransaction schedule: attempts, the delay after
// a pending answer and the delay after a failed request.
func WithPolling(attempts uint, pending, onError time.Duration) Option {
	return func(c *Client) {
		c.pollAttempts = attempts
		c.pendingDelay = pending
		c.errorDelay = onError
	}
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{},
		timeout:      config.DefaultDeployTimeout,
		keys:         KeyGeneratorFunc(wallet.GenerateEphemeral),
		lggr:         logging.Nop(),
		pendingDelay: config.TxPollInterval,
		errorDelay:   config.TxPollErrorDelay,
		pollAttempts: config.TxPollAttempts,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lggr = c.lggr.Named("deployapi")
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request bound.
func (c *Client) Timeout() time.Duration { return c.timeout }

// ServiceStatus is the answer of the API root.
type ServiceStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// Status checks that the service is up.
func (c *Client) Status(ctx context.Context) (*ServiceStatus, error) {
	var out ServiceStatus
	if err := c.do(ctx, http.MethodGet, "/", nil, &out); err != nil {
		return nil, fmt.Errorf("GET /: %w", err)
	}
	return &out, nil
}

// errorBody is the error envelope shared by every endpoint.
type errorBody struct {
	Error string `json:"error"`
}

var errTimeout = errors.New("request timed out")

// do sends one request bounded by the client timeout and decodes a 2xx body
// into out. Non-2xx answers become *HTTPError; an exceeded timeout returns
// errTimeout.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.lggr.Debugw("Calling deploy API", "method", method, "path", path)
	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return errTimeout
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(ctx, err) {
			return errTimeout
		}
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			httpErr.Message = eb.Error
			httpErr.Decoded = true
		}
		return httpErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// isTimeout reports whether err came from the client's own deadline.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
