package pipeline

import (
	"sync"
	"time"

	"github.com/kbukum/voicebridge/errors"
)

// State is a lifecycle state of the orchestrator.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// transitions is the allowed lifecycle graph. Anything not listed is
// rejected.
var transitions = map[State][]State{
	StateIdle:     {StateStarting},
	StateStarting: {StateRunning, StateStopping, StateIdle},
	StateRunning:  {StateStopping},
	StateStopping: {StateIdle},
}

// StateChange notifies subscribers of a lifecycle transition.
type StateChange struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// stateMachine guards lifecycle transitions and fans them out to
// subscribers.
type stateMachine struct {
	mu      sync.Mutex
	current State
	subs    []chan StateChange
}

func newStateMachine() *stateMachine {
	return &stateMachine{current: StateIdle}
}

func (m *stateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// to performs a transition, returning AlreadyRunning when a start is
// attempted outside Idle and an internal error for any other illegal
// move.
func (m *stateMachine) to(next State) error {
	m.mu.Lock()
	from := m.current
	allowed := false
	for _, s := range transitions[from] {
		if s == next {
			allowed = true
			break
		}
	}
	if !allowed {
		m.mu.Unlock()
		if next == StateStarting {
			return errors.AlreadyRunning()
		}
		return errors.NotRunning(string(next))
	}
	m.current = next
	subs := append([]chan StateChange(nil), m.subs...)
	m.mu.Unlock()

	change := StateChange{From: from, To: next, At: time.Now()}
	for _, ch := range subs {
		select {
		case ch <- change:
		default:
			// Slow subscribers miss transitions rather than stall the
			// lifecycle.
		}
	}
	return nil
}

// subscribe returns a buffered channel receiving future transitions.
func (m *stateMachine) subscribe() <-chan StateChange {
	ch := make(chan StateChange, 8)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}
