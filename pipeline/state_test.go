package pipeline

import (
	"testing"

	"github.com/kbukum/voicebridge/errors"
)

func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []State
		wantErr bool
	}{
		{"full lifecycle", []State{StateStarting, StateRunning, StateStopping, StateIdle}, false},
		{"aborted start", []State{StateStarting, StateIdle}, false},
		{"start while running", []State{StateStarting, StateRunning, StateStarting}, true},
		{"stop while idle", []State{StateStopping}, true},
		{"run without start", []State{StateRunning}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStateMachine()
			var err error
			for _, next := range tt.path {
				if err = m.to(next); err != nil {
					break
				}
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("path %v error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestStateMachineRejectsDoubleStart(t *testing.T) {
	m := newStateMachine()
	if err := m.to(StateStarting); err != nil {
		t.Fatalf("to(starting) error = %v", err)
	}
	if err := m.to(StateRunning); err != nil {
		t.Fatalf("to(running) error = %v", err)
	}

	err := m.to(StateStarting)
	if !errors.Is(err, errors.ErrCodeAlreadyRunning) {
		t.Errorf("error = %v, want AlreadyRunning", err)
	}
	if m.State() != StateRunning {
		t.Errorf("state = %q, rejected transition must not change state", m.State())
	}
}

func TestStateMachineSubscription(t *testing.T) {
	m := newStateMachine()
	ch := m.subscribe()

	if err := m.to(StateStarting); err != nil {
		t.Fatalf("to(starting) error = %v", err)
	}

	change := <-ch
	if change.From != StateIdle || change.To != StateStarting {
		t.Errorf("change = %+v", change)
	}
	if change.At.IsZero() {
		t.Error("change timestamp must be set")
	}
}
