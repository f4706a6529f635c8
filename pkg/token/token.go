package token

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind is the purpose a token was issued for.
type Kind string

const (
	KindVerification  Kind = "verification"
	KindPasswordReset Kind = "password_reset"
	KindLoginChange   Kind = "login_change"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVerification, KindPasswordReset, KindLoginChange:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Token is a stored single-use token. The secret itself is never stored.
type Token struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	Kind       Kind
	SecretHash []byte
	Data       map[string]string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time
}

// Consumed reports whether the token was redeemed.
func (t *Token) Consumed() bool {
	return t.ConsumedAt != nil
}

// Expired reports whether the token is expired at now.
func (t *Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Repository persists tokens. Implementations run inside the caller's
// transaction.
type Repository interface {
	CreateToken(ctx context.Context, t *Token) error
	// FindTokens returns every token of kind for the account, consumed ones included.
	FindTokens(ctx context.Context, accountID uuid.UUID, kind Kind) ([]Token, error)
	// ConsumeToken marks the token consumed at the given time if it is not
	// consumed yet, and reports whether this call did so.
	ConsumeToken(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	// DeleteTokens removes the account's tokens of the given kinds, or all of
	// them when no kind is passed.
	DeleteTokens(ctx context.Context, accountID uuid.UUID, kinds ...Kind) error
}
