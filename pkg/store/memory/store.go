package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

var _ account.Store = (*Store)(nil)

// Store implements account.Store in memory.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	accounts map[uuid.UUID]*account.Account
	logins   map[string]uuid.UUID
	tokens   map[uuid.UUID]*token.Token
	remember map[uuid.UUID]*account.RememberToken
}

// New returns an empty Store.
func New() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		accounts: make(map[uuid.UUID]*account.Account),
		logins:   make(map[string]uuid.UUID),
		tokens:   make(map[uuid.UUID]*token.Token),
		remember: make(map[uuid.UUID]*account.RememberToken),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, a := range s.accounts {
		c.accounts[id] = a.Clone()
	}
	maps.Copy(c.logins, s.logins)
	for id, t := range s.tokens {
		c.tokens[id] = cloneToken(t)
	}
	for id, r := range s.remember {
		c.remember[id] = r.Clone()
	}
	return c
}

// InTx runs fn against a copy of the data and keeps the copy if fn succeeds.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx account.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(ctx, &tx{state: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

// DeleteExpired removes tokens and remember tokens expired at now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, t := range s.state.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(s.state.tokens, id)
			n++
		}
	}
	for id, r := range s.state.remember {
		if !now.Before(r.ExpiresAt) {
			delete(s.state.remember, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored accounts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.accounts)
}

func cloneToken(t *token.Token) *token.Token {
	c := *t
	c.SecretHash = append([]byte(nil), t.SecretHash...)
	c.Data = maps.Clone(t.Data)
	if t.ConsumedAt != nil {
		at := *t.ConsumedAt
		c.ConsumedAt = &at
	}
	return &c
}
