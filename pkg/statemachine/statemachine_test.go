package statemachine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/statemachine"
)

const (
	draft     = statemachine.StringState("draft")
	review    = statemachine.StringState("in_review")
	published = statemachine.StringState("published")
	rejected  = statemachine.StringState("rejected")

	submit  = statemachine.StringEvent("submit")
	publish = statemachine.StringEvent("publish")
)

func TestDefinition_Machine(t *testing.T) {
	t.Parallel()

	def, err := statemachine.NewBuilder().
		From(draft).When(submit).To(review).Add().
		From(review).When(publish).To(published).Add().
		Build()
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("fires declared transitions", func(t *testing.T) {
		t.Parallel()
		m := def.Machine(draft)
		assert.True(t, m.CanFire(ctx, submit, nil))
		require.NoError(t, m.Fire(ctx, submit, nil))
		require.NoError(t, m.Fire(ctx, publish, nil))
		assert.Equal(t, statemachine.State(published), m.Current())
	})

	t.Run("seeded at any state", func(t *testing.T) {
		t.Parallel()
		m := def.Machine(review)
		assert.False(t, m.CanFire(ctx, submit, nil))
		require.NoError(t, m.Fire(ctx, publish, nil))
		assert.Equal(t, statemachine.State(published), m.Current())
	})

	t.Run("undeclared pair", func(t *testing.T) {
		t.Parallel()
		m := def.Machine(published)
		err := m.Fire(ctx, submit, nil)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.Equal(t, statemachine.State(published), m.Current())
	})

	t.Run("nil event", func(t *testing.T) {
		t.Parallel()
		m := def.Machine(draft)
		assert.ErrorIs(t, m.Fire(ctx, nil, nil), statemachine.ErrInvalidEvent)
		assert.False(t, m.CanFire(ctx, nil, nil))
	})
}

func TestBuilder_InvalidTransition(t *testing.T) {
	t.Parallel()

	_, err := statemachine.NewBuilder().
		From(draft).When(submit).Add().
		From(review).When(publish).To(published).Add().
		Build()
	assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
}

func TestGuards(t *testing.T) {
	t.Parallel()

	approved := func(_ context.Context, _ statemachine.State, _ statemachine.Event, data any) bool {
		ok, _ := data.(bool)
		return ok
	}
	def, err := statemachine.NewBuilder().
		From(review).When(publish).To(published).WithGuard(approved).Add().
		Build()
	require.NoError(t, err)
	ctx := context.Background()

	m := def.Machine(review)
	assert.False(t, m.CanFire(ctx, publish, false))
	err = m.Fire(ctx, publish, false)
	assert.True(t, statemachine.IsTransitionRejectedError(err))
	assert.Equal(t, statemachine.State(review), m.Current())

	require.NoError(t, m.Fire(ctx, publish, true))
	assert.Equal(t, statemachine.State(published), m.Current())
}

func TestGuards_FirstAllowedTransitionWins(t *testing.T) {
	t.Parallel()

	never := func(context.Context, statemachine.State, statemachine.Event, any) bool { return false }
	def, err := statemachine.NewBuilder().
		From(review).When(publish).To(published).WithGuard(never).Add().
		From(review).When(publish).To(rejected).Add().
		Build()
	require.NoError(t, err)

	m := def.Machine(review)
	require.NoError(t, m.Fire(context.Background(), publish, nil))
	assert.Equal(t, statemachine.State(rejected), m.Current())
}

func TestActions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var seen []string
	record := func(_ context.Context, from, to statemachine.State, event statemachine.Event, _ any) error {
		seen = append(seen, from.Name()+">"+to.Name()+"@"+event.Name())
		return nil
	}
	boom := errors.New("boom")
	fail := func(context.Context, statemachine.State, statemachine.State, statemachine.Event, any) error {
		return boom
	}

	def, err := statemachine.NewBuilder().
		From(draft).When(submit).To(review).WithAction(record).Add().
		From(review).When(publish).To(published).WithAction(fail).Add().
		Build()
	require.NoError(t, err)

	m := def.Machine(draft)
	require.NoError(t, m.Fire(ctx, submit, nil))
	assert.Equal(t, []string{"draft>in_review@submit"}, seen)

	assert.ErrorIs(t, m.Fire(ctx, publish, nil), boom)
	assert.Equal(t, statemachine.State(review), m.Current(), "a failed action keeps the state")
}

func TestMachine_ConcurrentFire(t *testing.T) {
	t.Parallel()

	def, err := statemachine.NewBuilder().
		From(draft).When(submit).To(review).Add().
		Build()
	require.NoError(t, err)

	m := def.Machine(draft)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Fire(context.Background(), submit, nil) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
