package statemachine

// Builder declares transitions fluently. The first invalid transition is
// reported by Build.
type Builder struct {
	def     *Definition
	from    State
	event   Event
	to      State
	guards  []Guard
	actions []Action
	err     error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{def: newDefinition()}
}

// From starts a transition from state.
func (b *Builder) From(state State) *Builder {
	b.reset()
	b.from = state
	return b
}

// When sets the event that triggers the transition.
func (b *Builder) When(event Event) *Builder {
	b.event = event
	return b
}

// To sets the target state.
func (b *Builder) To(state State) *Builder {
	b.to = state
	return b
}

// WithGuard adds a guard to the transition.
func (b *Builder) WithGuard(guard Guard) *Builder {
	if guard != nil {
		b.guards = append(b.guards, guard)
	}
	return b
}

// WithAction adds an action to the transition.
func (b *Builder) WithAction(action Action) *Builder {
	if action != nil {
		b.actions = append(b.actions, action)
	}
	return b
}

// Add finalizes the current transition.
func (b *Builder) Add() *Builder {
	if b.err == nil {
		b.err = b.def.add(Transition{
			From:    b.from,
			To:      b.to,
			Event:   b.event,
			Guards:  b.guards,
			Actions: b.actions,
		})
	}
	b.reset()
	return b
}

// Build returns the definition, or the first error met while adding
// transitions.
func (b *Builder) Build() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.def, nil
}

func (b *Builder) reset() {
	b.from = nil
	b.event = nil
	b.to = nil
	b.guards = nil
	b.actions = nil
}
