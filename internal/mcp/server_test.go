// file: internal/mcp/server_test.go
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/dkoosis/clevermcp/internal/clever"
	"github.com/dkoosis/clevermcp/internal/config"
	"github.com/dkoosis/clevermcp/internal/fetch"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
	mcptypes "github.com/dkoosis/clevermcp/internal/mcp_types"
	"github.com/dkoosis/clevermcp/internal/metrics"
	"github.com/dkoosis/clevermcp/internal/registry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher answers by endpoint label and records every call.
type stubFetcher struct {
	mu     sync.Mutex
	calls  []string
	bodies map[string]string
	err    error
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{bodies: map[string]string{
		"zones":    `[{"name":"par"}]`,
		"docs":     "# Clever Cloud docs\n",
		"markdown": "# Converted page\n",
	}}
}

func (f *stubFetcher) Get(_ context.Context, endpoint string, url string, _ map[string]string) (*fetch.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return &fetch.Response{URL: url, StatusCode: 200, Body: f.bodies[endpoint]}, nil
}

func (f *stubFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestServer(t *testing.T, fetcher clever.Fetcher) (*Server, *metrics.Metrics) {
	t.Helper()
	cfg := config.DefaultConfig()
	svc := clever.NewService(clever.NewClient(cfg.Remote, fetcher), nil)
	reg, err := registry.New(nil, svc)
	require.NoError(t, err)
	m := metrics.New("test")
	srv, err := NewServer(cfg, reg, nil, m, nil)
	require.NoError(t, err)
	return srv, m
}

func call(t *testing.T, d Dispatcher, method string, params string) (json.RawMessage, error) {
	t.Helper()
	var raw json.RawMessage
	if params != "" {
		raw = json.RawMessage(params)
	}
	return d.Handle(context.Background(), method, raw, false)
}

func requireJSONRPCError(t *testing.T, err error, wantCode int) map[string]interface{} {
	t.Helper()
	require.Error(t, err)
	code, _, data := mcperrors.MapMCPErrorToJSONRPC(err)
	require.Equal(t, wantCode, code, "unexpected JSON-RPC code for %v", err)
	return data
}

func TestNewServer_RegistersAllMethods(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())
	assert.ElementsMatch(t, []string{
		"initialize", "ping", "notifications/initialized", "notifications/cancelled",
		"tools/list", "tools/call", "prompts/list", "prompts/get", "resources/list", "resources/read",
	}, srv.Methods())
}

func TestInitialize_NegotiatesProtocolVersion(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())

	tests := []struct {
		requested string
		want      string
	}{
		{"2025-03-26", "2025-03-26"},
		{"2024-11-05", "2024-11-05"},
		{"1999-01-01", "2025-06-18"},
		{"", "2025-06-18"},
	}
	for _, tc := range tests {
		t.Run(tc.requested, func(t *testing.T) {
			params := fmt.Sprintf(`{"protocolVersion":%q,"clientInfo":{"name":"test","version":"1"},"capabilities":{}}`, tc.requested)
			res, err := call(t, srv, MethodInitialize, params)
			require.NoError(t, err)

			var got mcptypes.InitializeResult
			require.NoError(t, json.Unmarshal(res, &got))
			assert.Equal(t, tc.want, got.ProtocolVersion)
			assert.Equal(t, "mcp-clever-demo", got.ServerInfo.Name)
			assert.Equal(t, "0.1.8", got.ServerInfo.Version)
			assert.NotNil(t, got.Capabilities.Tools)
			assert.NotNil(t, got.Capabilities.Prompts)
			assert.NotNil(t, got.Capabilities.Resources)
		})
	}
}

func TestPing_ReturnsEmptyObject(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())
	res, err := call(t, srv, MethodPing, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(res))
}

func TestUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())
	_, err := call(t, srv, "sampling/createMessage", `{}`)
	data := requireJSONRPCError(t, err, -32601)
	assert.Equal(t, "sampling/createMessage", data["method"])
}

func TestToolsList(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())
	res, err := call(t, srv, MethodToolsList, `{}`)
	require.NoError(t, err)

	var got mcptypes.ListToolsResult
	require.NoError(t, json.Unmarshal(res, &got))
	require.Len(t, got.Tools, 3)
	assert.Equal(t, "get_clever_zones", got.Tools[0].Name)
	assert.Equal(t, "get_doc_urls", got.Tools[1].Name)
	assert.Equal(t, "fetch_webpage_markdown", got.Tools[2].Name)
	assert.JSONEq(t, `{"type":"object","properties":{},"required":[],"additionalProperties":false}`, string(got.Tools[0].InputSchema))
	assert.Contains(t, string(got.Tools[2].InputSchema), `"required":["url"]`)
	require.NotNil(t, got.Tools[0].Annotations)
	assert.True(t, got.Tools[0].Annotations.ReadOnlyHint)
}

func TestToolCall_ReturnsBodyAsTextContent(t *testing.T) {
	fetcher := newStubFetcher()
	srv, m := newTestServer(t, fetcher)

	for _, args := range []string{`{}`, `null`, ``} {
		params := `{"name":"get_clever_zones"}`
		if args != "" {
			params = `{"name":"get_clever_zones","arguments":` + args + `}`
		}
		res, err := call(t, srv, MethodToolsCall, params)
		require.NoError(t, err, "arguments %q", args)
		assert.JSONEq(t, `{"content":[{"type":"text","text":"[{\"name\":\"par\"}]"}]}`, string(res))
	}
	assert.Len(t, fetcher.Calls(), 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_clever_zones", metrics.OutcomeSuccess)))
}

func TestToolCall_FetchWebpageMarkdownBuildsProxyURL(t *testing.T) {
	fetcher := newStubFetcher()
	srv, _ := newTestServer(t, fetcher)

	res, err := call(t, srv, MethodToolsCall, `{"name":"fetch_webpage_markdown","arguments":{"url":"https://example.com/a b"}}`)
	require.NoError(t, err)
	assert.Contains(t, string(res), "# Converted page")
	assert.Equal(t, []string{"https://site2md.com/https%3A%2F%2Fexample.com%2Fa%20b"}, fetcher.Calls())
}

func TestToolCall_ValidationFailureIssuesNoFetch(t *testing.T) {
	tests := []struct {
		name       string
		params     string
		wantFields []string
	}{
		{"missing url", `{"name":"fetch_webpage_markdown","arguments":{}}`, []string{"url"}},
		{"missing arguments", `{"name":"fetch_webpage_markdown"}`, []string{"url"}},
		{"wrong type", `{"name":"fetch_webpage_markdown","arguments":{"url":42}}`, []string{"url"}},
		{"unexpected property", `{"name":"get_clever_zones","arguments":{"region":"par"}}`, []string{"region"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := newStubFetcher()
			srv, _ := newTestServer(t, fetcher)

			_, err := call(t, srv, MethodToolsCall, tc.params)
			data := requireJSONRPCError(t, err, -32602)
			assert.Equal(t, tc.wantFields, data["fields"])
			assert.NotEmpty(t, data["toolName"])
			assert.Empty(t, fetcher.Calls(), "Validation failures must not reach the network.")
		})
	}
}

func TestToolCall_UnknownToolIssuesNoFetch(t *testing.T) {
	fetcher := newStubFetcher()
	srv, _ := newTestServer(t, fetcher)

	_, err := call(t, srv, MethodToolsCall, `{"name":"unknown_tool","arguments":{}}`)
	data := requireJSONRPCError(t, err, -32602)
	assert.Equal(t, "tool", data["kind"])
	assert.Equal(t, "unknown_tool", data["name"])
	assert.Contains(t, err.Error(), "Unknown tool: unknown_tool")
	assert.Empty(t, fetcher.Calls())
}

func TestToolCall_UnknownNamesShareOneSeries(t *testing.T) {
	srv, m := newTestServer(t, newStubFetcher())

	for i := 0; i < 200; i++ {
		_, err := call(t, srv, MethodToolsCall, fmt.Sprintf(`{"name":"no_such_tool_%d","arguments":{}}`, i))
		requireJSONRPCError(t, err, -32602)
	}
	_, err := call(t, srv, MethodToolsCall, `{"name":"get_clever_zones","arguments":{}}`)
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.ToolCallsTotal))
	assert.Equal(t, 200.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues(metrics.UnknownTool, metrics.OutcomeError)))
}

func TestToolCall_MissingName(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())
	_, err := call(t, srv, MethodToolsCall, `{"arguments":{}}`)
	requireJSONRPCError(t, err, -32602)

	_, err = call(t, srv, MethodToolsCall, `[1,2]`)
	requireJSONRPCError(t, err, -32602)
}

func TestToolCall_RemoteFailurePropagates(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.err = mcperrors.NewRemoteFetchError(mcperrors.ErrRemoteFetch, "Request to zones failed", fmt.Errorf("connection refused"), nil)
	srv, m := newTestServer(t, fetcher)

	res, err := call(t, srv, MethodToolsCall, `{"name":"get_clever_zones","arguments":{}}`)
	requireJSONRPCError(t, err, -32020)
	assert.Nil(t, res, "A failure produces no content.")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCallsTotal.WithLabelValues("get_clever_zones", metrics.OutcomeError)))
}

func TestPrompts(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())

	res, err := call(t, srv, MethodPromptsList, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"prompts":[{"name":"hello_world","description":"A friendly greeting from Clever Cloud","arguments":[]}]}`, string(res))

	res, err = call(t, srv, MethodPromptsGet, `{"name":"hello_world"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"A friendly greeting from Clever Cloud","messages":[{"role":"assistant","content":{"type":"text","text":"Clever Cloud!"}}]}`, string(res))

	_, err = call(t, srv, MethodPromptsGet, `{"name":"goodbye"}`)
	data := requireJSONRPCError(t, err, -32602)
	assert.Equal(t, "prompt", data["kind"])
	assert.Equal(t, "goodbye", data["name"])
}

func TestResources(t *testing.T) {
	fetcher := newStubFetcher()
	srv, _ := newTestServer(t, fetcher)

	res, err := call(t, srv, MethodResourcesList, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"resources":[{"uri":"https://www.clever-cloud.com/developers/llms.txt","name":"clever-cloud-docs","description":"Clever Cloud documentation index in Markdown format","mimeType":"text/markdown"}]}`, string(res))

	res, err = call(t, srv, MethodResourcesRead, `{"uri":"https://www.clever-cloud.com/developers/llms.txt"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contents":[{"uri":"https://www.clever-cloud.com/developers/llms.txt","mimeType":"text/markdown","text":"# Clever Cloud docs\n"}]}`, string(res))
	require.Len(t, fetcher.Calls(), 1)

	_, err = call(t, srv, MethodResourcesRead, `{"uri":"https://example.com/nope"}`)
	data := requireJSONRPCError(t, err, -32002)
	assert.Equal(t, "https://example.com/nope", data["uri"])
	assert.Len(t, fetcher.Calls(), 1)

	fetcher.err = mcperrors.NewRemoteFetchError(mcperrors.ErrRemoteFetch, "Request to docs failed", fmt.Errorf("connection refused"), nil)
	res, err = call(t, srv, MethodResourcesRead, `{"uri":"https://www.clever-cloud.com/developers/llms.txt"}`)
	requireJSONRPCError(t, err, -32020)
	assert.Nil(t, res, "A failed read produces no contents.")
	assert.Len(t, fetcher.Calls(), 2)
}

func TestListingMatchesLookup(t *testing.T) {
	srv, _ := newTestServer(t, newStubFetcher())
	for _, tool := range srv.registry.Tools() {
		_, err := srv.registry.Tool(string(tool.Name))
		assert.NoError(t, err)
	}
	for _, name := range clever.AllTools {
		_, err := srv.registry.Tool(string(name))
		assert.NoError(t, err, "tool %s must be registered", name)
	}
}

func TestToolCall_Concurrent(t *testing.T) {
	fetcher := newStubFetcher()
	srv, _ := newTestServer(t, fetcher)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			params := fmt.Sprintf(`{"name":"fetch_webpage_markdown","arguments":{"url":"https://example.com/%d"}}`, i)
			if i%2 == 0 {
				params = `{"name":"get_doc_urls","arguments":{}}`
			}
			_, err := srv.Handle(context.Background(), MethodToolsCall, json.RawMessage(params), false)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, fetcher.Calls(), n)
}
