// Package fetch performs the outbound HTTP GETs behind every capability.
// file: internal/fetch/client.go
package fetch

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
	"github.com/dkoosis/clevermcp/internal/metrics"
)

// Response is the outcome of a GET that reached the remote server.
type Response struct {
	URL        string
	StatusCode int
	Body       string
	Duration   time.Duration
}

// Client issues GET requests and returns bodies verbatim, whatever the status code.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     logging.Logger
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMetrics records request latency and failures.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     logging.GetNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithField("component", "fetch_client")
	return c
}

// Get performs one GET against url. endpoint is a short label used in logs and metrics.
// Any status code yields a Response; only transport failures yield an error.
func (c *Client) Get(ctx context.Context, endpoint string, url string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, mcperrors.NewRemoteFetchError(mcperrors.ErrRemoteFetch,
			"Failed to build request for "+endpoint,
			errors.Wrapf(err, "fetch.Get: invalid request URL %q", url),
			map[string]interface{}{"endpoint": endpoint})
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := c.logger.WithContext(ctx).WithField("endpoint", endpoint)
	log.Debug("Sending remote request.", "url", url)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		elapsed := time.Since(start)
		c.metrics.ObserveFetch(endpoint, 0, elapsed, err)
		log.Warn("Remote request failed.", "url", url, "duration", elapsed, "error", err)
		return nil, mcperrors.NewRemoteFetchError(mcperrors.ErrRemoteFetch,
			"Request to "+endpoint+" failed",
			errors.Wrapf(err, "fetch.Get: GET %s", url),
			map[string]interface{}{"endpoint": endpoint, "url": url})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveFetch(endpoint, 0, elapsed, err)
		log.Warn("Failed to read remote response body.", "url", url, "status", resp.StatusCode, "error", err)
		return nil, mcperrors.NewRemoteFetchError(mcperrors.ErrRemoteBodyRead,
			"Reading response from "+endpoint+" failed",
			errors.Wrapf(err, "fetch.Get: reading body of %s", url),
			map[string]interface{}{"endpoint": endpoint, "url": url, "status": resp.StatusCode})
	}
	c.metrics.ObserveFetch(endpoint, resp.StatusCode, elapsed, nil)

	if resp.StatusCode >= http.StatusBadRequest {
		// Passed through unchanged; callers see the remote error body as content.
		log.Warn("Remote returned an error status.", "url", url, "status", resp.StatusCode, "bytes", len(body))
	} else {
		log.Debug("Remote request completed.", "url", url, "status", resp.StatusCode, "bytes", len(body), "duration", elapsed)
	}

	return &Response{
		URL:        url,
		StatusCode: resp.StatusCode,
		Body:       string(body),
		Duration:   elapsed,
	}, nil
}
