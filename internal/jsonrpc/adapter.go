// Package jsonrpc connects the MCP dispatcher to sourcegraph/jsonrpc2 connections.
// file: internal/jsonrpc/adapter.go
package jsonrpc

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/mcp"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
	"github.com/sourcegraph/jsonrpc2"
)

// Adapter implements jsonrpc2.Handler on top of an mcp.Dispatcher.
//
// jsonrpc2 calls Handle from its read loop. Lifecycle methods are dispatched
// inline so they are applied in arrival order; all other requests run on
// their own goroutine and may complete out of order.
type Adapter struct {
	dispatcher mcp.Dispatcher
	logger     logging.Logger
	wg         sync.WaitGroup
}

var _ jsonrpc2.Handler = (*Adapter)(nil)

// NewAdapter creates an adapter for d.
func NewAdapter(d mcp.Dispatcher, logger logging.Logger) *Adapter {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Adapter{dispatcher: d, logger: logger.WithField("component", "jsonrpc_adapter")}
}

// Handle implements jsonrpc2.Handler.
func (a *Adapter) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	if !req.Notif {
		ctx = logging.ContextWithRequestID(ctx, req.ID.String())
	}
	if mcp.IsLifecycleMethod(req.Method) {
		a.dispatch(ctx, conn, req)
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.dispatch(ctx, conn, req)
	}()
}

// Wait blocks until every in-flight request has been answered.
func (a *Adapter) Wait() {
	a.wg.Wait()
}

func (a *Adapter) dispatch(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	var params json.RawMessage
	if req.Params != nil {
		params = *req.Params
	}

	result, err := a.dispatcher.Handle(ctx, req.Method, params, req.Notif)
	if req.Notif {
		if err != nil {
			a.logger.WithContext(ctx).Warn("Notification handling failed.", "method", req.Method, "error", err)
		}
		return
	}

	if err != nil {
		if replyErr := conn.ReplyWithError(ctx, req.ID, ToRPCError(err)); replyErr != nil {
			a.logger.WithContext(ctx).Error("Failed to send error response.", "method", req.Method, "error", replyErr)
		}
		return
	}
	if result == nil {
		result = json.RawMessage("{}")
	}
	if replyErr := conn.Reply(ctx, req.ID, result); replyErr != nil {
		a.logger.WithContext(ctx).Error("Failed to send response.", "method", req.Method, "error", replyErr)
	}
}

// ToRPCError converts a dispatch error into a JSON-RPC error object.
func ToRPCError(err error) *jsonrpc2.Error {
	code, message, data := mcperrors.MapMCPErrorToJSONRPC(err)
	rpcErr := &jsonrpc2.Error{Code: int64(code), Message: message}
	if len(data) > 0 {
		rpcErr.SetError(data)
	}
	return rpcErr
}
