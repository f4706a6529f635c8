package event

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
)

// Kind names what happened.
type Kind string

const (
	AccountCreated         Kind = "account.created"
	VerificationRequested  Kind = "account.verification_requested"
	AccountVerified        Kind = "account.verified"
	PasswordResetRequested Kind = "account.password_reset_requested"
	PasswordReset          Kind = "account.password_reset"
	PasswordChanged        Kind = "account.password_changed"
	LoginChangeRequested   Kind = "account.login_change_requested"
	LoginChanged           Kind = "account.login_changed"
	AccountLocked          Kind = "account.locked"
	AccountClosed          Kind = "account.closed"
)

func (k Kind) String() string { return string(k) }

// Payload keys used by the account service.
const (
	KeyLogin     = "login"
	KeyOldLogin  = "old_login"
	KeyNewLogin  = "new_login"
	KeyToken     = "token"
	KeyExpiresAt = "expires_at"
	KeyUntil     = "until"
)

// Event is an immutable record of something that happened to an account.
// Payload may carry a plaintext link key; handlers must not log it.
type Event struct {
	ID         uuid.UUID
	Kind       Kind
	AccountID  uuid.UUID
	Payload    map[string]string
	OccurredAt time.Time
}

// New builds an event with a fresh id. The payload is copied.
func New(kind Kind, accountID uuid.UUID, at time.Time, payload map[string]string) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		AccountID:  accountID,
		Payload:    maps.Clone(payload),
		OccurredAt: at,
	}
}

// Get returns a payload value.
func (e Event) Get(key string) string {
	return e.Payload[key]
}

// Publisher receives committed events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, events ...Event) error

func (f PublisherFunc) Publish(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

// Nop discards events.
var Nop Publisher = PublisherFunc(func(context.Context, ...Event) error { return nil })
