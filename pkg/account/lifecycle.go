package account

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/accountkit/pkg/statemachine"
)

// Lifecycle events.
const (
	eventVerify = statemachine.StringEvent("verify")
	eventClose  = statemachine.StringEvent("close")
)

// Name implements statemachine.State.
func (s Status) Name() string { return string(s) }

// lifecycleEvents maps each target status to the event that reaches it.
var lifecycleEvents = map[Status]statemachine.Event{
	StatusActive: eventVerify,
	StatusClosed: eventClose,
}

// lifecycle declares the allowed status changes. Closed has no outgoing
// transition.
var lifecycle = mustLifecycle()

func mustLifecycle() *statemachine.Definition {
	def, err := statemachine.NewBuilder().
		From(StatusUnverified).When(eventVerify).To(StatusActive).
		WithGuard(inStatus).WithAction(applyStatus).Add().
		From(StatusUnverified).When(eventClose).To(StatusClosed).
		WithGuard(inStatus).WithAction(applyStatus).Add().
		From(StatusActive).When(eventClose).To(StatusClosed).
		WithGuard(inStatus).WithAction(applyStatus).Add().
		Build()
	if err != nil {
		panic(fmt.Sprintf("account: invalid lifecycle: %v", err))
	}
	return def
}

// inStatus passes when the account being moved is still in the machine's
// current status.
func inStatus(_ context.Context, from statemachine.State, _ statemachine.Event, data any) bool {
	acc, ok := data.(*Account)
	return ok && acc != nil && acc.Status == from
}

// applyStatus writes the target status onto the account.
func applyStatus(_ context.Context, _, to statemachine.State, _ statemachine.Event, data any) error {
	acc, ok := data.(*Account)
	if !ok || acc == nil {
		return ErrInvalidTransition
	}
	acc.Status = to.(Status)
	return nil
}

// CanTransition reports whether from may change to to.
func CanTransition(from, to Status) bool {
	event, ok := lifecycleEvents[to]
	if !ok {
		return false
	}
	return lifecycle.Machine(from).CanFire(context.Background(), event, &Account{Status: from})
}

// transition moves acc to the next status or explains why it cannot.
func transition(ctx context.Context, acc *Account, next Status) error {
	event, ok := lifecycleEvents[next]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, acc.Status, next)
	}
	err := lifecycle.Machine(acc.Status).Fire(ctx, event, acc)
	switch {
	case err == nil:
		return nil
	case acc.Status == StatusClosed:
		return ErrAccountNotActive
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, acc.Status, next)
	}
}
