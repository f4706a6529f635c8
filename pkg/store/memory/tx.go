package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

var _ account.Tx = (*tx)(nil)

// tx operates on a staged state owned by one InTx call.
type tx struct {
	state *state
}

func (t *tx) AccountByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := t.state.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (t *tx) AccountByLogin(ctx context.Context, login string) (*account.Account, error) {
	id, ok := t.state.logins[login]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return t.AccountByID(ctx, id)
}

func (t *tx) CreateAccount(_ context.Context, a *account.Account) error {
	if _, taken := t.state.logins[a.Login]; taken {
		return account.ErrDuplicateLogin
	}
	t.state.accounts[a.ID] = a.Clone()
	t.state.logins[a.Login] = a.ID
	return nil
}

func (t *tx) UpdateAccount(_ context.Context, a *account.Account) error {
	current, ok := t.state.accounts[a.ID]
	if !ok {
		return account.ErrAccountNotFound
	}
	if a.Login != current.Login {
		if _, taken := t.state.logins[a.Login]; taken {
			return account.ErrDuplicateLogin
		}
		delete(t.state.logins, current.Login)
		t.state.logins[a.Login] = a.ID
	}
	t.state.accounts[a.ID] = a.Clone()
	return nil
}

func (t *tx) RememberToken(_ context.Context, accountID uuid.UUID) (*account.RememberToken, error) {
	r, ok := t.state.remember[accountID]
	if !ok {
		return nil, account.ErrNoRememberToken
	}
	return r.Clone(), nil
}

func (t *tx) SaveRememberToken(_ context.Context, r *account.RememberToken) error {
	t.state.remember[r.AccountID] = r.Clone()
	return nil
}

func (t *tx) DeleteRememberTokens(_ context.Context, accountID uuid.UUID) error {
	delete(t.state.remember, accountID)
	return nil
}

func (t *tx) CreateToken(_ context.Context, tok *token.Token) error {
	t.state.tokens[tok.ID] = cloneToken(tok)
	return nil
}

func (t *tx) FindTokens(_ context.Context, accountID uuid.UUID, kind token.Kind) ([]token.Token, error) {
	var out []token.Token
	for _, tok := range t.state.tokens {
		if tok.AccountID == accountID && tok.Kind == kind {
			out = append(out, *cloneToken(tok))
		}
	}
	slices.SortFunc(out, func(a, b token.Token) int { return b.IssuedAt.Compare(a.IssuedAt) })
	return out, nil
}

func (t *tx) ConsumeToken(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tok, ok := t.state.tokens[id]
	if !ok || tok.ConsumedAt != nil {
		return false, nil
	}
	tok.ConsumedAt = &at
	return true, nil
}

func (t *tx) DeleteTokens(_ context.Context, accountID uuid.UUID, kinds ...token.Kind) error {
	for id, tok := range t.state.tokens {
		if tok.AccountID == accountID && (len(kinds) == 0 || slices.Contains(kinds, tok.Kind)) {
			delete(t.state.tokens, id)
		}
	}
	return nil
}
