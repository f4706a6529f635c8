package token_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/token"
)

// memRepo is a mutex-guarded token.Repository used by the tests.
type memRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]token.Token
}

func newMemRepo() *memRepo {
	return &memRepo{tokens: make(map[uuid.UUID]token.Token)}
}

func (r *memRepo) CreateToken(_ context.Context, t *token.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.ID] = *t
	return nil
}

func (r *memRepo) FindTokens(_ context.Context, accountID uuid.UUID, kind token.Kind) ([]token.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []token.Token
	for _, t := range r.tokens {
		if t.AccountID == accountID && t.Kind == kind {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memRepo) ConsumeToken(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok || t.ConsumedAt != nil {
		return false, nil
	}
	t.ConsumedAt = &at
	r.tokens[id] = t
	return true, nil
}

func (r *memRepo) DeleteTokens(_ context.Context, accountID uuid.UUID, kinds ...token.Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.tokens {
		if t.AccountID == accountID && (len(kinds) == 0 || slices.Contains(kinds, t.Kind)) {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
