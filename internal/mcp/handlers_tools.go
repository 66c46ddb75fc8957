// file: internal/mcp/handlers_tools.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
	"github.com/dkoosis/clevermcp/internal/mcp/router"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
	"github.com/dkoosis/clevermcp/internal/metrics"
	"github.com/dkoosis/clevermcp/internal/schema"
)

func (s *Server) handleToolsList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	defs := s.registry.Tools()
	tools := make([]mcptypes.Tool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, d.Descriptor())
	}
	return router.Result(mcptypes.ListToolsResult{Tools: tools})
}

// handleToolCall resolves the tool, validates its arguments and runs it.
// Lookup and validation failures return before the handler is invoked.
func (s *Server) handleToolCall(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.CallToolRequest
	if err := decodeParams(MethodToolsCall, params, &req); err != nil {
		return nil, err
	}
	if err := requireField(MethodToolsCall, "name", req.Name); err != nil {
		return nil, err
	}

	tool, err := s.registry.Tool(req.Name)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Tool not found.", "tool", req.Name)
		s.metrics.ObserveToolCall(metrics.UnknownTool, err)
		return nil, err
	}

	if err := s.validator.Validate(ctx, req.Name, req.Arguments); err != nil {
		s.metrics.ObserveToolCall(req.Name, err)
		return nil, toolArgumentsError(req.Name, err)
	}

	text, err := tool.Handler(ctx, req.Arguments)
	s.metrics.ObserveToolCall(req.Name, err)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Tool call failed.", "tool", req.Name, "error", err)
		return nil, err
	}

	return router.Result(mcptypes.CallToolResult{
		Content: []mcptypes.TextContent{mcptypes.NewTextContent(text)},
	})
}

// toolArgumentsError converts a schema failure into an invalid params error
// naming the tool and the offending fields.
func toolArgumentsError(toolName string, err error) error {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		if verr.Code == schema.ErrSchemaNotFound {
			return mcperrors.NewInternalError("No input schema for tool "+toolName, err, map[string]interface{}{"toolName": toolName})
		}
		return mcperrors.NewValidationFailedError(toolName, verr.Fields, verr)
	}
	return mcperrors.NewValidationFailedError(toolName, nil, err)
}
