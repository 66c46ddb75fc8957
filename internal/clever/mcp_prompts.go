package clever

// file: internal/clever/mcp_prompts.go

import (
	"context"

	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
	"github.com/dkoosis/clevermcp/internal/services"
)

const helloWorldDescription = "A friendly greeting from Clever Cloud"

// GetPrompts returns the prompt definitions.
func (s *Service) GetPrompts() []services.PromptDefinition {
	return []services.PromptDefinition{
		{
			Name:        PromptHelloWorld,
			Description: helloWorldDescription,
			Arguments:   []mcptypes.PromptArgument{},
			Handler:     s.handleHelloWorld,
		},
	}
}

func (s *Service) handleHelloWorld(_ context.Context, _ map[string]string) (*mcptypes.GetPromptResult, error) {
	return &mcptypes.GetPromptResult{
		Description: helloWorldDescription,
		Messages: []mcptypes.PromptMessage{
			{Role: "assistant", Content: mcptypes.NewTextContent(HelloWorldText)},
		},
	}, nil
}
