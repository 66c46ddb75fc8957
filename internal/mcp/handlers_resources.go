// file: internal/mcp/handlers_resources.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/clevermcp/internal/mcp/router"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
)

func (s *Server) handleResourcesList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	defs := s.registry.Resources()
	resources := make([]mcptypes.Resource, 0, len(defs))
	for _, d := range defs {
		resources = append(resources, d.Descriptor())
	}
	return router.Result(mcptypes.ListResourcesResult{Resources: resources})
}

func (s *Server) handleResourcesRead(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.ReadResourceRequest
	if err := decodeParams(MethodResourcesRead, params, &req); err != nil {
		return nil, err
	}
	if err := requireField(MethodResourcesRead, "uri", req.URI); err != nil {
		return nil, err
	}

	res, err := s.registry.Resource(req.URI)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Resource not found.", "uri", req.URI)
		return nil, err
	}

	text, err := res.Handler(ctx, req.URI)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Resource read failed.", "uri", req.URI, "error", err)
		return nil, err
	}

	return router.Result(mcptypes.ReadResourceResult{
		Contents: []mcptypes.TextResourceContents{
			{URI: string(res.URI), MimeType: res.MimeType, Text: text},
		},
	})
}
