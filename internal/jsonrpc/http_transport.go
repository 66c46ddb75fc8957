// file: internal/jsonrpc/http_transport.go
package jsonrpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/mcp"
	"github.com/dkoosis/clevermcp/internal/transport"
	"github.com/sourcegraph/jsonrpc2"
)

// HTTPHandler serves single JSON-RPC messages sent by POST. Each request is
// dispatched statelessly; there is no session to initialize.
type HTTPHandler struct {
	dispatcher     mcp.Dispatcher
	logger         logging.Logger
	requestTimeout time.Duration // Zero means none.
	maxBodySize    int64
}

// HTTPHandlerOption configures an HTTPHandler.
type HTTPHandlerOption func(*HTTPHandler)

// WithHTTPRequestTimeout sets the per-request timeout. Zero disables it.
func WithHTTPRequestTimeout(timeout time.Duration) HTTPHandlerOption {
	return func(h *HTTPHandler) {
		h.requestTimeout = timeout
	}
}

// WithHTTPMaxBodySize overrides transport.MaxMessageSize for request bodies.
func WithHTTPMaxBodySize(n int64) HTTPHandlerOption {
	return func(h *HTTPHandler) {
		if n > 0 {
			h.maxBodySize = n
		}
	}
}

// NewHTTPHandler creates an HTTP handler dispatching to d.
func NewHTTPHandler(d mcp.Dispatcher, logger logging.Logger, opts ...HTTPHandlerOption) *HTTPHandler {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	h := &HTTPHandler{
		dispatcher:  d,
		logger:      logger.WithField("component", "http_transport"),
		maxBodySize: transport.MaxMessageSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeFramingError(w, http.StatusRequestEntityTooLarge,
				transport.NewMessageSizeError(int(tooLarge.Limit)+1, int(h.maxBodySize)))
			return
		}
		h.logger.Warn("Failed to read request body.", "error", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	env, err := transport.Inspect(body)
	if err != nil {
		var ferr *transport.Error
		if errors.As(err, &ferr) {
			h.writeFramingError(w, http.StatusBadRequest, ferr)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if env.Kind == transport.KindResponse {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	var req jsonrpc2.Request
	if err := json.Unmarshal(body, &req); err != nil {
		ferr := transport.NewInvalidMessageError("message could not be decoded", body)
		ferr.ID = env.ID
		h.writeFramingError(w, http.StatusBadRequest, ferr)
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}
	if !req.Notif {
		ctx = logging.ContextWithRequestID(ctx, req.ID.String())
	}

	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}
	result, dispatchErr := h.dispatcher.Handle(ctx, req.Method, params, req.Notif)

	if req.Notif {
		if dispatchErr != nil {
			h.logger.WithContext(ctx).Warn("Notification handling failed.", "method", req.Method, "error", dispatchErr)
		}
		w.WriteHeader(http.StatusAccepted)
		return
	}

	resp := &jsonrpc2.Response{ID: req.ID}
	status := http.StatusOK
	switch {
	case dispatchErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		resp.Error = &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: "request timed out"}
	case dispatchErr != nil:
		resp.Error = ToRPCError(dispatchErr)
	default:
		if result == nil {
			result = json.RawMessage("{}")
		}
		if err := resp.SetResult(result); err != nil {
			resp.Error = ToRPCError(err)
		}
	}
	h.writeJSON(w, status, resp)
}

func (h *HTTPHandler) writeFramingError(w http.ResponseWriter, status int, ferr *transport.Error) {
	h.logger.Warn("Rejected HTTP message.", "status", status, "error", ferr)
	id := json.RawMessage("null")
	if len(ferr.ID) > 0 {
		id = ferr.ID
	}
	h.writeJSON(w, status, struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   *jsonrpc2.Error `json:"error"`
	}{JSONRPC: "2.0", ID: id, Error: transport.ErrorResponse(ferr)})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("Failed to encode HTTP response.", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("Failed to write HTTP response.", "error", err)
	}
}
