// Package fsm provides a small generic finite state machine wrapper.
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"

	"github.com/aldante1/mcp-todoist/internal/logging"
)

// State represents a state in the machine.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// Transition defines a transition rule between states. Every source state in
// From may move to To when Event fires.
type Transition struct {
	From  []State
	Event Event
	To    State
}

// Machine is a thin, concurrency-safe wrapper around looplab/fsm. It is built
// once from a fixed transition table and then driven with Fire.
type Machine struct {
	initial State
	fsm     *lfsm.FSM
	logger  logging.Logger
	mu      sync.Mutex
}

// New builds a machine with the given initial state and transition table.
// It returns an error when two transitions give the same event conflicting
// destinations, which looplab/fsm cannot represent.
func New(initial State, transitions []Transition, logger logging.Logger) (*Machine, error) {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	events := make(map[Event]lfsm.EventDesc)
	order := make([]Event, 0, len(transitions))
	for _, t := range transitions {
		if len(t.From) == 0 {
			return nil, errors.Newf("transition for event %q has no source states", t.Event)
		}
		desc, seen := events[t.Event]
		if !seen {
			desc = lfsm.EventDesc{Name: string(t.Event), Dst: string(t.To)}
			order = append(order, t.Event)
		} else if desc.Dst != string(t.To) {
			return nil, errors.Newf("event %q has conflicting destinations %q and %q", t.Event, desc.Dst, t.To)
		}
		for _, from := range t.From {
			desc.Src = appendUnique(desc.Src, string(from))
		}
		events[t.Event] = desc
	}

	descs := make([]lfsm.EventDesc, 0, len(order))
	for _, ev := range order {
		descs = append(descs, events[ev])
	}

	return &Machine{
		initial: initial,
		fsm:     lfsm.NewFSM(string(initial), descs, lfsm.Callbacks{}),
		logger:  logger.WithField("component", "fsm"),
	}, nil
}

// Current returns the machine's current state.
func (m *Machine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State(m.fsm.Current())
}

// Can reports whether the event is allowed from the current state.
func (m *Machine) Can(event Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fsm.Can(string(event))
}

// Fire attempts the transition for the given event.
func (m *Machine) Fire(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.fsm.Current()
	if err := m.fsm.Event(ctx, string(event)); err != nil {
		m.logger.Debug("Transition refused.", "event", event, "state", from, "error", err)
		return errors.Wrapf(err, "event %q not allowed in state %q", event, from)
	}
	m.logger.Debug("Transition applied.", "event", event, "from", from, "to", m.fsm.Current())
	return nil
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fsm.SetState(string(m.initial))
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
