// file: internal/mcp/handlers_prompts.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/dkoosis/clevermcp/internal/mcp/router"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
)

func (s *Server) handlePromptsList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	defs := s.registry.Prompts()
	prompts := make([]mcptypes.Prompt, 0, len(defs))
	for _, d := range defs {
		prompts = append(prompts, d.Descriptor())
	}
	return router.Result(mcptypes.ListPromptsResult{Prompts: prompts})
}

func (s *Server) handlePromptGet(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.GetPromptRequest
	if err := decodeParams(MethodPromptsGet, params, &req); err != nil {
		return nil, err
	}
	if err := requireField(MethodPromptsGet, "name", req.Name); err != nil {
		return nil, err
	}

	prompt, err := s.registry.Prompt(req.Name)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Prompt not found.", "prompt", req.Name)
		return nil, err
	}

	result, err := prompt.Handler(ctx, req.Arguments)
	if err != nil {
		return nil, err
	}
	return router.Result(result)
}
