package statemachine

import "context"

// State is a state of a machine.
type State interface {
	Name() string
}

// Event triggers a transition.
type Event interface {
	Name() string
}

// Action runs a side effect during a transition. Returning an error prevents
// the transition.
type Action func(ctx context.Context, from, to State, event Event, data any) error

// Guard reports whether a transition may proceed.
type Guard func(ctx context.Context, from State, event Event, data any) bool

// Transition is a state change triggered by an event.
type Transition struct {
	From    State
	To      State
	Event   Event
	Guards  []Guard  // All must pass
	Actions []Action // Run in order before the state changes
}

// allowed reports whether every guard of t passes.
func (t Transition) allowed(ctx context.Context, from State, event Event, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}

// StringState is a State named by its value.
type StringState string

func (s StringState) Name() string {
	return string(s)
}

// StringEvent is an Event named by its value.
type StringEvent string

func (e StringEvent) Name() string {
	return string(e)
}
