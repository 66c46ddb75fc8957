package clever

// file: internal/clever/mcp_resources.go

import (
	"context"

	"github.com/dkoosis/clevermcp/internal/services"
)

// GetResources returns the resource definitions.
func (s *Service) GetResources() []services.ResourceDefinition {
	return []services.ResourceDefinition{
		{
			URI:         ResourceDocIndex,
			Name:        "clever-cloud-docs",
			Description: "Clever Cloud documentation index in Markdown format",
			MimeType:    MimeMarkdown,
			Handler:     s.readDocIndex,
		},
	}
}

// readDocIndex fetches the documentation index. The resource URI is fixed, but
// the body comes from the configured docs endpoint so mirrors and tests work.
func (s *Service) readDocIndex(ctx context.Context, _ string) (string, error) {
	resp, err := s.client.GetDocURLs(ctx)
	if err != nil {
		return "", err
	}
	return resp.Body, nil
}
