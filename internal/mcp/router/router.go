// Package router dispatches MCP method calls to registered handlers.
// file: internal/mcp/router/router.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
)

// Handler handles a request and returns the encoded result.
type Handler func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// NotificationHandler handles a notification. No response is sent.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Middleware wraps the handler chain of one method.
type Middleware func(method string, next Handler) Handler

// Route maps a method name to its handlers. At least one must be set.
type Route struct {
	Method              string
	Handler             Handler
	NotificationHandler NotificationHandler
}

// Router dispatches incoming messages by method name.
type Router interface {
	// AddRoute registers a handler for a method.
	AddRoute(route Route) error
	// Use appends middleware. Middleware added first runs outermost.
	Use(mw ...Middleware)
	// Route dispatches a message to its handler.
	Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error)
	// GetRoutes returns the registered method names, sorted.
	GetRoutes() []string
}

type router struct {
	routes     map[string]Route
	middleware []Middleware
	mu         sync.RWMutex
	logger     logging.Logger
}

// NewRouter creates an empty Router.
func NewRouter(logger logging.Logger) Router {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &router{
		routes: make(map[string]Route),
		logger: logger.WithField("component", "mcp_router"),
	}
}

// AddRoute registers route. Duplicate methods are rejected.
func (r *router) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route.Method == "" {
		return errors.New("cannot register route with empty method name")
	}
	if route.Handler == nil && route.NotificationHandler == nil {
		return errors.Newf("route for method '%s' must have at least one handler", route.Method)
	}
	if _, exists := r.routes[route.Method]; exists {
		r.logger.Warn("Attempted to register duplicate route.", "method", route.Method)
		return errors.Newf("route for method '%s' already registered", route.Method)
	}

	r.routes[route.Method] = route
	r.logger.Debug("Registered route.", "method", route.Method)
	return nil
}

func (r *router) Use(mw ...Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middleware = append(r.middleware, mw...)
}

// Route runs the handler for method through the middleware chain.
// A notification sent to a request-only method runs the handler and discards the result.
func (r *router) Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error) {
	r.mu.RLock()
	route, exists := r.routes[method]
	chain := r.middleware
	r.mu.RUnlock()

	if !exists {
		r.logger.Debug("Method not found in router.", "method", method)
		return nil, mcperrors.NewMethodNotFoundError(
			fmt.Sprintf("Method '%s' not found", method),
			nil,
			map[string]interface{}{"method": method},
		)
	}

	var h Handler
	switch {
	case isNotification && route.NotificationHandler != nil:
		nh := route.NotificationHandler
		h = func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
			return nil, nh(ctx, params)
		}
	case isNotification:
		inner := route.Handler
		h = func(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
			_, err := inner(ctx, params)
			return nil, err
		}
	case route.Handler != nil:
		h = route.Handler
	default:
		return nil, mcperrors.NewMethodNotFoundError(
			fmt.Sprintf("Method '%s' is notification-only and cannot produce a response", method),
			nil,
			map[string]interface{}{"method": method},
		)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](method, h)
	}
	return h(ctx, params)
}

func (r *router) GetRoutes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.routes))
	for method := range r.routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

// Result encodes v as a handler result.
func Result(v interface{}) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, mcperrors.NewInternalError("Failed to encode result", errors.Wrap(err, "router.Result"), nil)
	}
	return b, nil
}
