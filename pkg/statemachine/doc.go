// Package statemachine implements finite state machines whose transitions
// are declared once and shared by many short-lived machines.
//
// A Definition holds the transition table: for each (from state, event)
// pair an ordered list of transitions, each with optional guards and
// actions. Machine seeds a machine at any state, which suits records whose
// state is persisted elsewhere and loaded per request.
//
// # Usage
//
//	const (
//	    Draft     = statemachine.StringState("draft")
//	    Published = statemachine.StringState("published")
//	    Publish   = statemachine.StringEvent("publish")
//	)
//
//	def, err := statemachine.NewBuilder().
//	    From(Draft).When(Publish).To(Published).Add().
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	m := def.Machine(post.State)
//	if err := m.Fire(ctx, Publish, post); err != nil {
//	    return err
//	}
//
// # Guards and Actions
//
// Guards veto a transition based on the data passed to Fire. The first
// transition whose guards all pass is taken. Actions run in order before the
// state changes; an action error aborts the transition.
//
// # Errors
//
// Fire reports an undeclared (state, event) pair with
// ErrNoTransitionAvailable and a guard veto with ErrTransitionRejected. Use
// IsNoTransitionAvailableError and IsTransitionRejectedError to tell them
// apart.
package statemachine
