package account_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// MockSessionRevoker is a mock implementation of account.SessionRevoker.
type MockSessionRevoker struct {
	mock.Mock
}

func (m *MockSessionRevoker) RevokeAccount(ctx context.Context, accountID uuid.UUID) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

// eventLog collects published events.
type eventLog struct {
	mu     sync.Mutex
	events []event.Event
}

func (l *eventLog) Publish(_ context.Context, events ...event.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, events...)
	return nil
}

func (l *eventLog) kinds() []event.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]event.Kind, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Kind)
	}
	return out
}

func (l *eventLog) last(kind event.Kind) (event.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind == kind {
			return l.events[i], true
		}
	}
	return event.Event{}, false
}

func (l *eventLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// faultyStore fails transactions once armed, after running the function so
// that its writes and events are discarded.
type faultyStore struct {
	account.Store
	mu    sync.Mutex
	err   error
	calls []string
}

// record notes a Tx method call.
func (f *faultyStore) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

// takeCalls returns the Tx calls made since the previous takeCalls.
func (f *faultyStore) takeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.calls
	f.calls = nil
	return out
}

func (f *faultyStore) arm(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *faultyStore) InTx(ctx context.Context, fn func(ctx context.Context, tx account.Tx) error) error {
	return f.Store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
		if err := fn(ctx, &countingTx{Tx: tx, store: f}); err != nil {
			return err
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.err
	})
}

// countingTx records every call made through it on the owning faultyStore.
type countingTx struct {
	account.Tx
	store *faultyStore
}

func (c *countingTx) CreateToken(ctx context.Context, t *token.Token) error {
	c.store.record("CreateToken")
	return c.Tx.CreateToken(ctx, t)
}

func (c *countingTx) FindTokens(ctx context.Context, accountID uuid.UUID, kind token.Kind) ([]token.Token, error) {
	c.store.record("FindTokens")
	return c.Tx.FindTokens(ctx, accountID, kind)
}

func (c *countingTx) ConsumeToken(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	c.store.record("ConsumeToken")
	return c.Tx.ConsumeToken(ctx, id, at)
}

func (c *countingTx) DeleteTokens(ctx context.Context, accountID uuid.UUID, kinds ...token.Kind) error {
	c.store.record("DeleteTokens")
	return c.Tx.DeleteTokens(ctx, accountID, kinds...)
}

func (c *countingTx) AccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	c.store.record("AccountByID")
	return c.Tx.AccountByID(ctx, id)
}

func (c *countingTx) AccountByLogin(ctx context.Context, login string) (*account.Account, error) {
	c.store.record("AccountByLogin")
	return c.Tx.AccountByLogin(ctx, login)
}

func (c *countingTx) CreateAccount(ctx context.Context, acc *account.Account) error {
	c.store.record("CreateAccount")
	return c.Tx.CreateAccount(ctx, acc)
}

func (c *countingTx) UpdateAccount(ctx context.Context, acc *account.Account) error {
	c.store.record("UpdateAccount")
	return c.Tx.UpdateAccount(ctx, acc)
}

func (c *countingTx) RememberToken(ctx context.Context, accountID uuid.UUID) (*account.RememberToken, error) {
	c.store.record("RememberToken")
	return c.Tx.RememberToken(ctx, accountID)
}

func (c *countingTx) SaveRememberToken(ctx context.Context, rt *account.RememberToken) error {
	c.store.record("SaveRememberToken")
	return c.Tx.SaveRememberToken(ctx, rt)
}

func (c *countingTx) DeleteRememberTokens(ctx context.Context, accountID uuid.UUID) error {
	c.store.record("DeleteRememberTokens")
	return c.Tx.DeleteRememberTokens(ctx, accountID)
}
