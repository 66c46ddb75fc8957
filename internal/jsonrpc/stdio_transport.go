// file: internal/jsonrpc/stdio_transport.go
package jsonrpc

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	"github.com/dkoosis/clevermcp/internal/mcp"
	"github.com/dkoosis/clevermcp/internal/transport"
	"github.com/sourcegraph/jsonrpc2"
)

// ServeStdio serves one MCP session over newline-delimited JSON on in and out.
// It returns nil when the input ends or ctx is cancelled. Requests still in
// flight when the input ends are answered before returning.
func ServeStdio(ctx context.Context, server *mcp.Server, in io.Reader, out io.Writer, logger logging.Logger) error {
	if server == nil {
		return errors.New("jsonrpc.ServeStdio: server is nil")
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "stdio_transport")

	session, err := server.NewSession()
	if err != nil {
		return errors.Wrap(err, "jsonrpc.ServeStdio: failed to create session")
	}
	adapter := NewAdapter(session, logger)

	var closer io.Closer
	if c, ok := in.(io.Closer); ok {
		closer = c
	}
	stream := transport.NewNDJSONStream(in, out, closer, logger, transport.WithOnEOF(adapter.Wait))
	conn := jsonrpc2.NewConn(ctx, stream, adapter, jsonrpc2.SetLogger(stdLogAdapter{log}))

	log.Info("MCP server listening on stdio.")

	select {
	case <-conn.DisconnectNotify():
		log.Info("Input closed, stopping stdio transport.")
	case <-ctx.Done():
		log.Info("Context cancelled, stopping stdio transport.", "reason", ctx.Err())
		if err := conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
			log.Warn("Error closing connection.", "error", err)
		}
	}
	session.Close(context.Background())
	return nil
}

// stdLogAdapter routes jsonrpc2's internal log lines to the structured logger.
type stdLogAdapter struct {
	logger logging.Logger
}

func (l stdLogAdapter) Printf(format string, v ...interface{}) {
	l.logger.Debug("jsonrpc2", "detail", fmt.Sprintf(format, v...))
}
