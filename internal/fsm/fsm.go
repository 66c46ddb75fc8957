// Package fsm wraps looplab/fsm with typed states and events, guard support
// and error classification.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/clevermcp/internal/logging"
	lfsm "github.com/looplab/fsm"
)

// State is a machine state.
type State string

// Event triggers a transition.
type Event string

// GuardCondition decides whether a transition may fire. data is the value
// passed to Fire, or nil.
type GuardCondition func(ctx context.Context, event Event, data interface{}) bool

// Transition is one rule: Event moves the machine from any of From to To.
type Transition struct {
	From      []State
	To        State
	Event     Event
	Condition GuardCondition // Optional.
}

// Machine is a finite state machine safe for concurrent use.
type Machine struct {
	fsm    *lfsm.FSM
	mu     sync.Mutex // Serializes Fire.
	logger logging.Logger
}

// New validates transitions and builds the machine in state initial.
// An event may appear in several transitions only if they share a destination.
func New(initial State, transitions []Transition, logger logging.Logger) (*Machine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	log := logger.WithField("component", "fsm")

	descs := make(map[Event]*lfsm.EventDesc)
	order := make([]Event, 0, len(transitions))
	guards := make(map[Event][]Transition)

	for _, t := range transitions {
		if t.Event == "" {
			return nil, errors.Newf("transition to '%s' has no event", t.To)
		}
		if len(t.From) == 0 {
			return nil, errors.Newf("transition for event '%s' is missing 'From' states", t.Event)
		}
		desc, ok := descs[t.Event]
		if !ok {
			desc = &lfsm.EventDesc{Name: string(t.Event), Dst: string(t.To)}
			descs[t.Event] = desc
			order = append(order, t.Event)
		} else if desc.Dst != string(t.To) {
			return nil, errors.Newf("conflicting destinations ('%s' and '%s') for event '%s'", desc.Dst, t.To, t.Event)
		}
		for _, s := range t.From {
			if !containsString(desc.Src, string(s)) {
				desc.Src = append(desc.Src, string(s))
			}
		}
		if t.Condition != nil {
			guards[t.Event] = append(guards[t.Event], t)
		}
	}

	events := make(lfsm.Events, 0, len(order))
	for _, e := range order {
		events = append(events, *descs[e])
	}

	callbacks := lfsm.Callbacks{}
	for event, ts := range guards {
		callbacks["before_"+string(event)] = guardCallback(event, ts, log)
	}

	log.Debug("State machine built.", "initial_state", initial, "event_count", len(events))
	return &Machine{
		fsm:    lfsm.NewFSM(string(initial), events, callbacks),
		logger: log,
	}, nil
}

// guardCallback cancels event when the guard of the transition leaving the
// current state rejects it.
func guardCallback(event Event, ts []Transition, log logging.Logger) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		var data interface{}
		if len(e.Args) > 0 {
			data = e.Args[0]
		}
		for _, t := range ts {
			if !containsState(t.From, State(e.Src)) {
				continue
			}
			if !t.Condition(ctx, event, data) {
				log.Debug("Guard rejected transition.", "event", event, "from", e.Src)
				e.Cancel(errors.Newf("guard for event '%s' from state '%s' failed", event, e.Src))
			}
			return
		}
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	return State(m.fsm.Current())
}

// Can reports whether event is defined for the current state. Guards are not evaluated.
func (m *Machine) Can(event Event) bool {
	return m.fsm.Can(string(event))
}

// Fire triggers event. A transition whose destination equals the current
// state succeeds without change.
func (m *Machine) Fire(ctx context.Context, event Event, data interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.Current()
	var args []interface{}
	if data != nil {
		args = append(args, data)
	}

	err := m.fsm.Event(ctx, string(event), args...)
	var noTransition lfsm.NoTransitionError
	if errors.As(err, &noTransition) && noTransition.Err == nil {
		err = nil
	}
	if err != nil {
		m.logger.Debug("Transition rejected.", "event", event, "state", from, "error", err)
		return errors.Wrapf(err, "event '%s' in state '%s'", event, from)
	}

	m.logger.Debug("Transition complete.", "event", event, "from", from, "to", m.Current())
	return nil
}

// IsRejected reports whether err means the event was not allowed: undefined
// for the current state, unknown, or blocked by a guard.
func IsRejected(err error) bool {
	var invalid lfsm.InvalidEventError
	var unknown lfsm.UnknownEventError
	var canceled lfsm.CanceledError
	return errors.As(err, &invalid) || errors.As(err, &unknown) || errors.As(err, &canceled)
}

// IsGuardRejected reports whether err came from a guard condition.
func IsGuardRejected(err error) bool {
	var canceled lfsm.CanceledError
	return errors.As(err, &canceled)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsState(list []State, s State) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
