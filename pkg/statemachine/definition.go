package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Definition is an immutable transition table. It is safe for concurrent
// use once built.
type Definition struct {
	// [from][event] in declaration order
	transitions map[string]map[string][]Transition
}

func newDefinition() *Definition {
	return &Definition{transitions: make(map[string]map[string][]Transition)}
}

func (d *Definition) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}
	from, event := t.From.Name(), t.Event.Name()
	if _, ok := d.transitions[from]; !ok {
		d.transitions[from] = make(map[string][]Transition)
	}
	d.transitions[from][event] = append(d.transitions[from][event], t)
	return nil
}

// lookup returns the first transition from state on event whose guards pass.
func (d *Definition) lookup(ctx context.Context, state State, event Event, data any) (*Transition, error) {
	candidates := d.transitions[state.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(state.Name(), event.Name())
	}
	for i := range candidates {
		if candidates[i].allowed(ctx, state, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, NewErrTransitionRejected(state.Name(), event.Name())
}

// Machine returns a machine that starts at current.
func (d *Definition) Machine(current State) *Machine {
	return &Machine{def: d, current: current}
}

// Machine tracks the current state of one subject.
type Machine struct {
	def     *Definition
	mu      sync.RWMutex
	current State
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire takes the first allowed transition for event, runs its actions and
// moves to its target state.
func (m *Machine) Fire(ctx context.Context, event Event, data any) error {
	if event == nil {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return NewErrNoTransitionAvailable("", event.Name())
	}
	t, err := m.def.lookup(ctx, m.current, event, data)
	if err != nil {
		return err
	}
	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, m.current, t.To, event, data); err != nil {
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.To
	return nil
}

// CanFire reports whether Fire would find an allowed transition. Actions are
// not run.
func (m *Machine) CanFire(ctx context.Context, event Event, data any) bool {
	if event == nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return false
	}
	_, err := m.def.lookup(ctx, m.current, event, data)
	return err == nil
}
