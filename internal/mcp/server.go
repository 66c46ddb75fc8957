// Package mcp implements the Model Context Protocol dispatcher: it routes
// lifecycle and capability methods to the registry and the schema validator.
// file: internal/mcp/server.go
package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/config"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/mcp/router"
	"github.com/dkoosis/clevermcp/internal/metrics"
	"github.com/dkoosis/clevermcp/internal/registry"
	"github.com/dkoosis/clevermcp/internal/schema"
)

// Method names handled by the server.
const (
	MethodInitialize    = "initialize"
	MethodPing          = "ping"
	MethodInitialized   = "notifications/initialized"
	MethodCancelled     = "notifications/cancelled"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodPromptsList   = "prompts/list"
	MethodPromptsGet    = "prompts/get"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
)

// Dispatcher handles one decoded JSON-RPC message. A nil result with a nil
// error is returned for notifications.
type Dispatcher interface {
	Handle(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error)
}

// Server owns the routing table. It holds no per-client state and is safe
// for concurrent use; per-connection lifecycle lives in Session.
type Server struct {
	config    *config.Config
	registry  *registry.Registry
	validator *schema.Validator
	metrics   *metrics.Metrics
	router    router.Router
	logger    logging.Logger
	startTime time.Time
}

var _ Dispatcher = (*Server)(nil)

// NewServer compiles every tool input schema and registers the method routes.
// m may be nil to disable metrics.
func NewServer(cfg *config.Config, reg *registry.Registry, validator *schema.Validator, m *metrics.Metrics, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("mcp.NewServer: config is nil")
	}
	if reg == nil {
		return nil, errors.New("mcp.NewServer: registry is nil")
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "mcp_server")
	if validator == nil {
		validator = schema.NewValidator(log)
	}

	for _, t := range reg.Tools() {
		if err := validator.Compile(string(t.Name), t.InputSchema); err != nil {
			return nil, errors.Wrapf(err, "mcp.NewServer: input schema of tool %q", t.Name)
		}
	}

	s := &Server{
		config:    cfg,
		registry:  reg,
		validator: validator,
		metrics:   m,
		router:    router.NewRouter(log),
		logger:    log,
		startTime: time.Now(),
	}
	s.router.Use(router.LoggingMiddleware(log), router.MetricsMiddleware(m))
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}

	log.Info("MCP server ready.",
		"tools", len(reg.Tools()), "prompts", len(reg.Prompts()), "resources", len(reg.Resources()),
		"schema_compile_duration", validator.GetCompileDuration())
	return s, nil
}

func (s *Server) registerRoutes() error {
	routes := []router.Route{
		{Method: MethodInitialize, Handler: s.handleInitialize},
		{Method: MethodPing, Handler: s.handlePing},
		{Method: MethodInitialized, NotificationHandler: s.handleNotificationsInitialized},
		{Method: MethodCancelled, NotificationHandler: s.handleNotificationsCancelled},
		{Method: MethodToolsList, Handler: s.handleToolsList},
		{Method: MethodToolsCall, Handler: s.handleToolCall},
		{Method: MethodPromptsList, Handler: s.handlePromptsList},
		{Method: MethodPromptsGet, Handler: s.handlePromptGet},
		{Method: MethodResourcesList, Handler: s.handleResourcesList},
		{Method: MethodResourcesRead, Handler: s.handleResourcesRead},
	}
	for _, r := range routes {
		if err := s.router.AddRoute(r); err != nil {
			return errors.Wrapf(err, "mcp.NewServer: registering %s", r.Method)
		}
	}
	return nil
}

// Handle dispatches without lifecycle gating. The HTTP transport uses it
// directly since every request stands alone.
func (s *Server) Handle(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error) {
	return s.router.Route(ctx, method, params, isNotification)
}

// Methods returns the registered method names.
func (s *Server) Methods() []string {
	return s.router.GetRoutes()
}

// Uptime returns the time since the server was created.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// IsLifecycleMethod reports whether method changes session state. Transports
// handle these in arrival order rather than concurrently.
func IsLifecycleMethod(method string) bool {
	switch method {
	case MethodInitialize, MethodInitialized, MethodPing:
		return true
	}
	return false
}
