// file: cmd/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dkoosis/clevermcp/internal/config"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/zones", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"par"}]`))
	})
	mux.HandleFunc("/llms.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# Docs\n"))
	})
	mux.HandleFunc("/md/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# Page\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(remoteURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Remote.ZonesURL = remoteURL + "/zones"
	cfg.Remote.DocsURL = remoteURL + "/llms.txt"
	cfg.Remote.MarkdownBaseURL = remoteURL + "/md/"
	cfg.Metrics.Namespace = "test"
	return cfg
}

func TestLoadConfig_BuildVersion(t *testing.T) {
	t.Setenv("CLEVERMCP_SERVER_VERSION", "")

	cfg, err := LoadConfig(Options{Version: "2.0.0", Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", cfg.Server.Version, "The build version replaces the default.")
	assert.Equal(t, "debug", cfg.Logging.Level)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  version: 1.5.0\n"), 0o600))
	cfg, err = LoadConfig(Options{ConfigPath: path, Version: "2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", cfg.Server.Version, "A configured version wins.")

	t.Setenv("CLEVERMCP_SERVER_VERSION", "9.9.9")
	cfg, err = LoadConfig(Options{Version: "2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "9.9.9", cfg.Server.Version, "An environment version wins.")
}

func TestServe_StdioRoundTrip(t *testing.T) {
	remote := newRemote(t)
	c, err := Build(context.Background(), testConfig(remote.URL), logging.GetNoopLogger())
	require.NoError(t, err)

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"t","version":"1"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"resources/read","params":{"uri":"https://www.clever-cloud.com/developers/llms.txt"}}`,
	}, "\n") + "\n"
	var out bytes.Buffer
	require.NoError(t, Serve(context.Background(), c, strings.NewReader(input), &out, logging.GetNoopLogger()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, out.String(), `"protocolVersion":"2024-11-05"`)
	assert.Contains(t, out.String(), `# Docs`)
}

func TestNewHTTPRouter(t *testing.T) {
	remote := newRemote(t)
	c, err := Build(context.Background(), testConfig(remote.URL), logging.GetNoopLogger())
	require.NoError(t, err)
	router := NewHTTPRouter(c, logging.GetNoopLogger())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	rec = httptest.NewRecorder()
	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"get_clever_zones"}}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `[{\"name\":\"par\"}]`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_mcp_tool_calls_total")
}

func TestNewHTTPRouter_NoMetricsWhenDisabled(t *testing.T) {
	cfg := testConfig(newRemote(t).URL)
	cfg.Metrics.Enabled = false
	c, err := Build(context.Background(), cfg, logging.GetNoopLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewHTTPRouter(c, logging.GetNoopLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheck(t *testing.T) {
	remote := newRemote(t)
	c, err := Build(context.Background(), testConfig(remote.URL), logging.GetNoopLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Check(context.Background(), c.Service, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "PASS"), l)
	}

	cfg := testConfig("http://127.0.0.1:1")
	c, err = Build(context.Background(), cfg, logging.GetNoopLogger())
	require.NoError(t, err)
	out.Reset()
	assert.Error(t, Check(context.Background(), c.Service, &out))
	assert.Contains(t, out.String(), "FAIL")
}
