package registry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dkoosis/clevermcp/internal/logging"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
	"github.com/dkoosis/clevermcp/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	name      string
	tools     []services.ToolDefinition
	prompts   []services.PromptDefinition
	resources []services.ResourceDefinition
}

func (s *stubService) GetName() string                              { return s.name }
func (s *stubService) GetTools() []services.ToolDefinition         { return s.tools }
func (s *stubService) GetPrompts() []services.PromptDefinition     { return s.prompts }
func (s *stubService) GetResources() []services.ResourceDefinition { return s.resources }
func (s *stubService) Initialize(context.Context) error             { return nil }
func (s *stubService) Shutdown() error                              { return nil }

func okTool(_ context.Context, _ json.RawMessage) (string, error) { return "ok", nil }

func okPrompt(_ context.Context, _ map[string]string) (*mcptypes.GetPromptResult, error) {
	return &mcptypes.GetPromptResult{}, nil
}

func okResource(_ context.Context, _ string) (string, error) { return "body", nil }

func newStub() *stubService {
	return &stubService{
		name: "stub",
		tools: []services.ToolDefinition{
			{Name: "b_tool", Handler: okTool},
			{Name: "a_tool", Handler: okTool},
		},
		prompts:   []services.PromptDefinition{{Name: "greet", Handler: okPrompt}},
		resources: []services.ResourceDefinition{{URI: "mem://doc", Name: "doc", Handler: okResource}},
	}
}

func TestNew_PreservesRegistrationOrder(t *testing.T) {
	r, err := New(logging.GetNoopLogger(), newStub())
	require.NoError(t, err)

	tools := r.Tools()
	require.Len(t, tools, 2)
	assert.Equal(t, services.ToolName("b_tool"), tools[0].Name)
	assert.Equal(t, services.ToolName("a_tool"), tools[1].Name)
}

func TestNew_Fails_When_DuplicateToolAcrossServices(t *testing.T) {
	other := &stubService{name: "other", tools: []services.ToolDefinition{{Name: "a_tool", Handler: okTool}}}

	_, err := New(nil, newStub(), other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tool")
}

func TestNew_Fails_When_HandlerMissing(t *testing.T) {
	bad := &stubService{name: "bad", resources: []services.ResourceDefinition{{URI: "x://y"}}}

	_, err := New(nil, bad)
	require.Error(t, err)
}

func TestNew_Fails_When_ToolNameInvalid(t *testing.T) {
	bad := &stubService{name: "bad", tools: []services.ToolDefinition{{Name: "has space", Handler: okTool}}}

	_, err := New(nil, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tool name")
	assert.Contains(t, err.Error(), "tool names: must start with a letter")
	assert.Contains(t, err.Error(), "at most 64 characters")
}

func TestLookup_ListedNamesResolve(t *testing.T) {
	r, err := New(nil, newStub())
	require.NoError(t, err)

	for _, d := range r.Tools() {
		_, err := r.Tool(string(d.Name))
		assert.NoError(t, err, "listed tool %s must resolve", d.Name)
	}
	for _, d := range r.Prompts() {
		_, err := r.Prompt(string(d.Name))
		assert.NoError(t, err, "listed prompt %s must resolve", d.Name)
	}
	for _, d := range r.Resources() {
		_, err := r.Resource(string(d.URI))
		assert.NoError(t, err, "listed resource %s must resolve", d.URI)
	}
}

func TestLookup_UnknownNames_ReturnCapabilityErrors(t *testing.T) {
	r, err := New(nil, newStub())
	require.NoError(t, err)

	_, err = r.Tool("unknown_tool")
	assert.True(t, mcperrors.IsCode(err, mcperrors.ErrToolNotFound))

	_, err = r.Prompt("nope")
	assert.True(t, mcperrors.IsCode(err, mcperrors.ErrPromptNotFound))

	_, err = r.Resource("mem://missing")
	assert.True(t, mcperrors.IsCode(err, mcperrors.ErrResourceNotFound))
}

func TestTools_ReturnsCopy(t *testing.T) {
	r, err := New(nil, newStub())
	require.NoError(t, err)

	tools := r.Tools()
	tools[0].Name = "mutated"

	_, err = r.Tool("b_tool")
	assert.NoError(t, err, "Mutating a returned slice must not change the registry.")
}
