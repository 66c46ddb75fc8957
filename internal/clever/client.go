package clever

// file: internal/clever/client.go

import (
	"context"
	"strings"

	"github.com/dkoosis/clevermcp/internal/config"
	"github.com/dkoosis/clevermcp/internal/fetch"
)

// Fetcher is the subset of *fetch.Client used here.
type Fetcher interface {
	Get(ctx context.Context, endpoint string, url string, headers map[string]string) (*fetch.Response, error)
}

// Client wraps the three remote endpoints.
type Client struct {
	fetcher         Fetcher
	zonesURL        string
	docsURL         string
	markdownBaseURL string
}

// NewClient creates a Client for the endpoints in cfg.
func NewClient(cfg config.RemoteConfig, fetcher Fetcher) *Client {
	base := cfg.MarkdownBaseURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &Client{
		fetcher:         fetcher,
		zonesURL:        cfg.ZonesURL,
		docsURL:         cfg.DocsURL,
		markdownBaseURL: base,
	}
}

// GetZones returns the raw body of the zones listing.
func (c *Client) GetZones(ctx context.Context) (*fetch.Response, error) {
	return c.fetcher.Get(ctx, endpointZones, c.zonesURL, jsonHeaders)
}

// GetDocURLs returns the raw body of the documentation index.
func (c *Client) GetDocURLs(ctx context.Context) (*fetch.Response, error) {
	return c.fetcher.Get(ctx, endpointDocs, c.docsURL, jsonHeaders)
}

// FetchWebpageMarkdown returns the markdown rendering of target via the conversion proxy.
func (c *Client) FetchWebpageMarkdown(ctx context.Context, target string) (*fetch.Response, error) {
	return c.fetcher.Get(ctx, endpointMarkdown, c.MarkdownURL(target), jsonHeaders)
}

// MarkdownURL builds the conversion proxy URL for target.
func (c *Client) MarkdownURL(target string) string {
	return c.markdownBaseURL + fetch.EncodeURIComponent(target)
}
