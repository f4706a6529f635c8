package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/token"
)

// Store is the transactional persistence collaborator.
type Store interface {
	// InTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Implementations may run fn more
	// than once when a serialization conflict is retried.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// DeleteExpired removes tokens and remember tokens that expired at or
	// before now and returns how many rows were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Tx is the view of the store inside a transaction. Account reads lock the
// row until the transaction ends.
type Tx interface {
	token.Repository

	// AccountByID returns ErrAccountNotFound when no account has the id.
	AccountByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// AccountByLogin looks up a normalized login. Returns ErrAccountNotFound
	// when absent.
	AccountByLogin(ctx context.Context, login string) (*Account, error)
	// CreateAccount returns ErrDuplicateLogin when the login is taken.
	CreateAccount(ctx context.Context, acc *Account) error
	// UpdateAccount returns ErrDuplicateLogin when the new login is taken.
	UpdateAccount(ctx context.Context, acc *Account) error

	// RememberToken returns ErrNoRememberToken when the account has none.
	RememberToken(ctx context.Context, accountID uuid.UUID) (*RememberToken, error)
	// SaveRememberToken replaces the account's remember token.
	SaveRememberToken(ctx context.Context, rt *RememberToken) error
	DeleteRememberTokens(ctx context.Context, accountID uuid.UUID) error
}

// SessionRevoker ends every live session of an account. The service calls it
// after a committed password change, password reset or closure.
type SessionRevoker interface {
	RevokeAccount(ctx context.Context, accountID uuid.UUID) error
}
