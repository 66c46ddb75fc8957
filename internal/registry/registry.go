// Package registry holds the immutable capability table shared by listing and dispatch.
// file: internal/registry/registry.go
package registry

import (
	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
	"github.com/dkoosis/clevermcp/internal/schema"
	"github.com/dkoosis/clevermcp/internal/services"
)

// Kind names a capability family.
type Kind string

// Capability families.
const (
	KindTool     Kind = "tool"
	KindPrompt   Kind = "prompt"
	KindResource Kind = "resource"
)

// Registry is built once by New and never mutated afterwards, so concurrent
// readers need no locking.
type Registry struct {
	tools     []services.ToolDefinition
	prompts   []services.PromptDefinition
	resources []services.ResourceDefinition

	toolIndex     map[services.ToolName]int
	promptIndex   map[services.PromptName]int
	resourceIndex map[services.ResourceURI]int
}

// New collects the capabilities of every service in order.
func New(logger logging.Logger, svcs ...services.Service) (*Registry, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "registry")

	r := &Registry{
		toolIndex:     make(map[services.ToolName]int),
		promptIndex:   make(map[services.PromptName]int),
		resourceIndex: make(map[services.ResourceURI]int),
	}

	for _, svc := range svcs {
		if svc == nil {
			return nil, errors.New("registry: nil service")
		}
		name := svc.GetName()

		for _, t := range svc.GetTools() {
			if t.Handler == nil {
				return nil, errors.Newf("registry: tool %q of service %q has no handler", t.Name, name)
			}
			if err := schema.ValidateName(schema.EntityTypeTool, string(t.Name)); err != nil {
				return nil, nameError(schema.EntityTypeTool, name, err)
			}
			if _, dup := r.toolIndex[t.Name]; dup {
				return nil, errors.Newf("registry: duplicate tool %q (service %q)", t.Name, name)
			}
			r.toolIndex[t.Name] = len(r.tools)
			r.tools = append(r.tools, t)
		}

		for _, p := range svc.GetPrompts() {
			if p.Handler == nil {
				return nil, errors.Newf("registry: prompt %q of service %q has no handler", p.Name, name)
			}
			if err := schema.ValidateName(schema.EntityTypePrompt, string(p.Name)); err != nil {
				return nil, nameError(schema.EntityTypePrompt, name, err)
			}
			if _, dup := r.promptIndex[p.Name]; dup {
				return nil, errors.Newf("registry: duplicate prompt %q (service %q)", p.Name, name)
			}
			r.promptIndex[p.Name] = len(r.prompts)
			r.prompts = append(r.prompts, p)
		}

		for _, res := range svc.GetResources() {
			if res.Handler == nil {
				return nil, errors.Newf("registry: resource %q of service %q has no handler", res.URI, name)
			}
			if err := schema.ValidateName(schema.EntityTypeResource, string(res.URI)); err != nil {
				return nil, nameError(schema.EntityTypeResource, name, err)
			}
			if _, dup := r.resourceIndex[res.URI]; dup {
				return nil, errors.Newf("registry: duplicate resource %q (service %q)", res.URI, name)
			}
			r.resourceIndex[res.URI] = len(r.resources)
			r.resources = append(r.resources, res)
		}

		log.Debug("Registered service capabilities.", "service", name,
			"tools", len(svc.GetTools()), "prompts", len(svc.GetPrompts()), "resources", len(svc.GetResources()))
	}

	log.Info("Capability registry built.", "tools", len(r.tools), "prompts", len(r.prompts), "resources", len(r.resources))
	return r, nil
}

// Tools returns the tool definitions in registration order.
func (r *Registry) Tools() []services.ToolDefinition {
	return append([]services.ToolDefinition(nil), r.tools...)
}

// Prompts returns the prompt definitions in registration order.
func (r *Registry) Prompts() []services.PromptDefinition {
	return append([]services.PromptDefinition(nil), r.prompts...)
}

// Resources returns the resource definitions in registration order.
func (r *Registry) Resources() []services.ResourceDefinition {
	return append([]services.ResourceDefinition(nil), r.resources...)
}

// Tool looks up a tool by name.
func (r *Registry) Tool(name string) (services.ToolDefinition, error) {
	i, ok := r.toolIndex[services.ToolName(name)]
	if !ok {
		return services.ToolDefinition{}, mcperrors.NewUnknownCapabilityError(string(KindTool), name)
	}
	return r.tools[i], nil
}

// Prompt looks up a prompt by name.
func (r *Registry) Prompt(name string) (services.PromptDefinition, error) {
	i, ok := r.promptIndex[services.PromptName(name)]
	if !ok {
		return services.PromptDefinition{}, mcperrors.NewUnknownCapabilityError(string(KindPrompt), name)
	}
	return r.prompts[i], nil
}

// Resource looks up a resource by URI.
func (r *Registry) Resource(uri string) (services.ResourceDefinition, error) {
	i, ok := r.resourceIndex[services.ResourceURI(uri)]
	if !ok {
		return services.ResourceDefinition{}, mcperrors.NewUnknownCapabilityError(string(KindResource), uri)
	}
	return r.resources[i], nil
}

// nameError wraps a naming failure with the rules the name broke.
func nameError(kind schema.EntityType, service string, err error) error {
	return errors.Wrapf(err, "registry: service %q (%s)", service, schema.GetNamePatternDescription(kind))
}
