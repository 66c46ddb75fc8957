// Package services defines the contract between backend integrations and the MCP server.
// A service contributes tools, prompts and resources; the registry collects them once at startup.
// file: internal/services/service.go
package services

import "context"

// Service is a backend integration exposing MCP capabilities.
type Service interface {
	// GetName returns the unique, lowercase identifier of the service.
	GetName() string

	// GetTools returns the tools this service provides, in listing order.
	GetTools() []ToolDefinition

	// GetPrompts returns the prompts this service provides, in listing order.
	GetPrompts() []PromptDefinition

	// GetResources returns the resources this service provides, in listing order.
	GetResources() []ResourceDefinition

	// Initialize performs any setup needed before the service handles requests.
	Initialize(ctx context.Context) error

	// Shutdown releases resources held by the service.
	Shutdown() error
}
