package services

// file: internal/services/definitions.go

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
)

// ToolName, PromptName and ResourceURI tag capability identifiers by kind.
type (
	ToolName    string
	PromptName  string
	ResourceURI string
)

// ToolHandler runs a tool with arguments that already passed schema validation.
// The returned text becomes a single text content block.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// PromptHandler renders a prompt.
type PromptHandler func(ctx context.Context, args map[string]string) (*mcptypes.GetPromptResult, error)

// ResourceHandler returns the text body of a resource.
type ResourceHandler func(ctx context.Context, uri string) (string, error)

// ToolDefinition pairs a tool's metadata with its handler.
type ToolDefinition struct {
	Name        ToolName
	Description string
	InputSchema json.RawMessage
	Annotations *mcptypes.ToolAnnotations
	Handler     ToolHandler
}

// Descriptor returns the tools/list entry for the tool.
func (d ToolDefinition) Descriptor() mcptypes.Tool {
	return mcptypes.Tool{
		Name:        string(d.Name),
		Description: d.Description,
		InputSchema: d.InputSchema,
		Annotations: d.Annotations,
	}
}

// PromptDefinition pairs a prompt's metadata with its handler.
type PromptDefinition struct {
	Name        PromptName
	Description string
	Arguments   []mcptypes.PromptArgument
	Handler     PromptHandler
}

// Descriptor returns the prompts/list entry for the prompt.
func (d PromptDefinition) Descriptor() mcptypes.Prompt {
	args := d.Arguments
	if args == nil {
		args = []mcptypes.PromptArgument{}
	}
	return mcptypes.Prompt{Name: string(d.Name), Description: d.Description, Arguments: args}
}

// ResourceDefinition pairs a resource's metadata with its handler.
type ResourceDefinition struct {
	URI         ResourceURI
	Name        string
	Description string
	MimeType    string
	Handler     ResourceHandler
}

// Descriptor returns the resources/list entry for the resource.
func (d ResourceDefinition) Descriptor() mcptypes.Resource {
	return mcptypes.Resource{
		URI:         string(d.URI),
		Name:        d.Name,
		Description: d.Description,
		MimeType:    d.MimeType,
	}
}

// TypedTool adapts a handler taking a decoded argument struct.
// Missing or null arguments decode to the zero value of T.
func TypedTool[T any](fn func(ctx context.Context, args T) (string, error)) ToolHandler {
	return func(ctx context.Context, raw json.RawMessage) (string, error) {
		var args T
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
			if err := json.Unmarshal(trimmed, &args); err != nil {
				return "", errors.Wrapf(err, "failed to decode arguments into %T", args)
			}
		}
		return fn(ctx, args)
	}
}
