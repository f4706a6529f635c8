package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for session storage
type Store interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token. Returns ErrSessionNotFound for
	// unknown tokens and ErrSessionExpired for expired ones.
	Get(ctx context.Context, token string) (*Session, error)

	// Touch records activity and moves the expiry of a session
	Touch(ctx context.Context, token string, lastActivity, expiresAt time.Time) error

	// Delete removes a session by token. Deleting an unknown token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByAccount removes every session of the account
	DeleteByAccount(ctx context.Context, accountID uuid.UUID) error

	// DeleteExpired removes all expired sessions
	DeleteExpired(ctx context.Context) error
}
