// file: internal/mcp/state/machine.go
package state

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/fsm"
	"github.com/dkoosis/clevermcp/internal/logging"
	mcperrors "github.com/dkoosis/clevermcp/internal/mcp/mcp_errors"
)

// MCPStateMachine tracks the lifecycle of one client session.
type MCPStateMachine struct {
	*fsm.Machine
	logger logging.Logger
}

var lifecycleTransitions = []fsm.Transition{
	{From: []fsm.State{StateUninitialized}, Event: EventInitializeRequest, To: StateInitializing, Condition: hasProtocolVersion},
	{From: []fsm.State{StateInitializing, StateInitialized}, Event: EventClientInitialized, To: StateInitialized},
	{From: []fsm.State{StateUninitialized, StateInitializing, StateInitialized}, Event: EventConnectionClosed, To: StateShutdown},
}

// NewMCPStateMachine creates a session machine in StateUninitialized.
func NewMCPStateMachine(logger logging.Logger) (*MCPStateMachine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "mcp_state_machine")

	m, err := fsm.New(StateUninitialized, lifecycleTransitions, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build MCP state machine configuration")
	}
	return &MCPStateMachine{Machine: m, logger: log}, nil
}

// ValidateMethod checks whether method may be received in the current state.
// It returns an ErrRequestSequence protocol error when it may not.
func (m *MCPStateMachine) ValidateMethod(method string) error {
	current := m.Current()

	if method == MethodPing {
		return nil
	}
	if event := EventForMethod(method); event != "" {
		if m.Can(event) {
			return nil
		}
		m.logger.Warn("Received out-of-sequence lifecycle method.", "method", method, "state", current)
		return sequenceError(method, current)
	}
	if IsOperational(current) {
		return nil
	}
	m.logger.Warn("Received method before initialization.", "method", method, "state", current)
	return sequenceError(method, current)
}

// Apply fires the lifecycle event for method, if it has one. params are the
// request params and feed the transition guards.
func (m *MCPStateMachine) Apply(ctx context.Context, method string, params json.RawMessage) error {
	event := EventForMethod(method)
	if event == "" {
		return nil
	}
	current := m.Current()
	if err := m.Fire(ctx, event, params); err != nil {
		if fsm.IsGuardRejected(err) {
			return mcperrors.NewInvalidParamsError(
				fmt.Sprintf("Invalid params for %s: protocolVersion must be a string", method), err,
				map[string]interface{}{"method": method, "fields": []string{"protocolVersion"}})
		}
		if fsm.IsRejected(err) {
			return sequenceError(method, current)
		}
		return errors.Wrapf(err, "lifecycle transition for '%s' failed", method)
	}
	return nil
}

// Close moves the session to StateShutdown. Closing twice is a no-op.
func (m *MCPStateMachine) Close(ctx context.Context) {
	if IsTerminal(m.Current()) {
		return
	}
	if err := m.Fire(ctx, EventConnectionClosed, nil); err != nil {
		m.logger.Debug("Session close transition failed.", "error", err)
	}
}

// hasProtocolVersion lets a session initialize only when the client named
// the protocol revision it speaks.
func hasProtocolVersion(_ context.Context, _ fsm.Event, data interface{}) bool {
	params, _ := data.(json.RawMessage)
	var req struct {
		ProtocolVersion json.RawMessage `json:"protocolVersion"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return false
	}
	if string(req.ProtocolVersion) == "null" {
		return false
	}
	var version string
	return json.Unmarshal(req.ProtocolVersion, &version) == nil
}

func sequenceError(method string, current fsm.State) error {
	var msg string
	switch {
	case method == MethodInitialize:
		msg = fmt.Sprintf("Session already initialized (state: '%s')", current)
	case current == StateUninitialized:
		msg = fmt.Sprintf("Method '%s' not allowed before initialization", method)
	default:
		msg = fmt.Sprintf("Method '%s' not allowed in state '%s'", method, current)
	}
	return mcperrors.NewProtocolError(mcperrors.ErrRequestSequence, msg, nil,
		map[string]interface{}{"method": method, "state": string(current)})
}
