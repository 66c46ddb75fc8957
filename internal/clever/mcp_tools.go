package clever

// file: internal/clever/mcp_tools.go

import (
	"context"
	"encoding/json"

	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
	"github.com/dkoosis/clevermcp/internal/services"
)

// FetchWebpageMarkdownArgs are the arguments of fetch_webpage_markdown.
type FetchWebpageMarkdownArgs struct {
	URL string `json:"url"`
}

var (
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"required":[],"additionalProperties":false}`)
	urlArgSchema = json.RawMessage(`{"type":"object","properties":{"url":{"type":"string","description":"Absolute URL of the page to convert"}},"required":["url"]}`)
)

func readOnly(title string) *mcptypes.ToolAnnotations {
	return &mcptypes.ToolAnnotations{Title: title, ReadOnlyHint: true, IdempotentHint: true, OpenWorldHint: true}
}

// GetTools returns the tool definitions, in listing order.
func (s *Service) GetTools() []services.ToolDefinition {
	return []services.ToolDefinition{
		{
			Name:        ToolGetCleverZones,
			Description: "Get the list of Clever Cloud deployment zones",
			InputSchema: noArgsSchema,
			Annotations: readOnly("Clever Cloud zones"),
			Handler:     services.TypedTool(s.handleGetCleverZones),
		},
		{
			Name:        ToolGetDocURLs,
			Description: "Get the list of Clever Cloud documentation URLs in Markdown format",
			InputSchema: noArgsSchema,
			Annotations: readOnly("Clever Cloud documentation index"),
			Handler:     services.TypedTool(s.handleGetDocURLs),
		},
		{
			Name:        ToolFetchWebpageMarkdown,
			Description: "Get the content of a given URL in Markdown format",
			InputSchema: urlArgSchema,
			Annotations: readOnly("Webpage as Markdown"),
			Handler:     services.TypedTool(s.handleFetchWebpageMarkdown),
		},
	}
}

func (s *Service) handleGetCleverZones(ctx context.Context, _ struct{}) (string, error) {
	resp, err := s.client.GetZones(ctx)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

func (s *Service) handleGetDocURLs(ctx context.Context, _ struct{}) (string, error) {
	resp, err := s.client.GetDocURLs(ctx)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}

func (s *Service) handleFetchWebpageMarkdown(ctx context.Context, args FetchWebpageMarkdownArgs) (string, error) {
	s.logger.Debug("Fetching webpage as markdown.", "url", args.URL)
	resp, err := s.client.FetchWebpageMarkdown(ctx, args.URL)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}
