// file: internal/mcp/session.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/fsm"
	"github.com/dkoosis/clevermcp/internal/mcp/state"
)

// Session gates one long-lived connection through the lifecycle state machine.
type Session struct {
	server *Server
	state  *state.MCPStateMachine
}

var _ Dispatcher = (*Session)(nil)

// NewSession starts a session in the uninitialized state.
func (s *Server) NewSession() (*Session, error) {
	sm, err := state.NewMCPStateMachine(s.logger)
	if err != nil {
		return nil, errors.Wrap(err, "mcp.NewSession")
	}
	return &Session{server: s, state: sm}, nil
}

// Handle checks the method against the session state, dispatches it and,
// on success, applies its lifecycle transition.
func (ss *Session) Handle(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error) {
	if err := ss.state.ValidateMethod(method); err != nil {
		return nil, err
	}

	result, err := ss.server.Handle(ctx, method, params, isNotification)
	if err != nil {
		return nil, err
	}

	if err := ss.state.Apply(ctx, method, params); err != nil {
		return nil, err
	}
	return result, nil
}

// State returns the current lifecycle state.
func (ss *Session) State() fsm.State {
	return ss.state.Current()
}

// Close marks the session as shut down.
func (ss *Session) Close(ctx context.Context) {
	ss.state.Close(ctx)
	ss.server.logger.Debug("Session closed.")
}
