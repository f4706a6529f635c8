package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/account"
)

// Revoker adapts a Store to account.SessionRevoker, so the account service
// can be built before the Gate that depends on it.
type Revoker struct {
	store Store
}

// NewRevoker returns a revoker that deletes sessions from store.
func NewRevoker(store Store) *Revoker {
	return &Revoker{store: store}
}

// RevokeAccount deletes every session of the account.
func (r *Revoker) RevokeAccount(ctx context.Context, accountID uuid.UUID) error {
	return r.store.DeleteByAccount(ctx, accountID)
}

var _ account.SessionRevoker = (*Revoker)(nil)
