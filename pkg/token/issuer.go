package token

import (
	"context"
	"crypto/hmac"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// Issuer creates and redeems tokens with a server-side hashing key.
type Issuer struct {
	key    []byte
	now    func() time.Time
	logger *slog.Logger
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithIssuerLogger sets the logger.
func WithIssuerLogger(l *slog.Logger) IssuerOption {
	return func(i *Issuer) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewIssuer returns an Issuer that hashes secrets with key.
func NewIssuer(key []byte, opts ...IssuerOption) (*Issuer, error) {
	if len(key) == 0 {
		return nil, ErrMissingKey
	}
	i := &Issuer{
		key:    append([]byte(nil), key...),
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// IssueOption sets optional token fields.
type IssueOption func(*Token)

// WithData attaches data to the token, e.g. the logins of a pending change.
func WithData(data map[string]string) IssueOption {
	return func(t *Token) {
		t.Data = maps.Clone(data)
	}
}

// Issue stores a new token of kind for the account after deleting earlier
// tokens of the same kind, and returns it with its plaintext secret.
func (i *Issuer) Issue(ctx context.Context, repo Repository, accountID uuid.UUID, kind Kind, ttl time.Duration, opts ...IssueOption) (*Token, string, error) {
	secret, err := NewSecret()
	if err != nil {
		return nil, "", err
	}

	if err := repo.DeleteTokens(ctx, accountID, kind); err != nil {
		return nil, "", fmt.Errorf("failed to invalidate previous %s tokens: %w", kind, err)
	}

	now := i.now().UTC()
	t := &Token{
		ID:         uuid.New(),
		AccountID:  accountID,
		Kind:       kind,
		SecretHash: HashSecret(i.key, secret),
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}
	for _, opt := range opts {
		opt(t)
	}

	if err := repo.CreateToken(ctx, t); err != nil {
		return nil, "", fmt.Errorf("failed to store %s token: %w", kind, err)
	}

	i.logger.DebugContext(ctx, "token issued",
		logger.AccountID(accountID), logger.TokenKind(string(kind)))

	return t, secret, nil
}

// Redeem consumes the account's token of kind whose hash matches secret.
func (i *Issuer) Redeem(ctx context.Context, repo Repository, accountID uuid.UUID, kind Kind, secret string) (*Token, error) {
	if secret == "" {
		return nil, ErrInvalid
	}

	tokens, err := repo.FindTokens(ctx, accountID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s tokens: %w", kind, err)
	}

	want := HashSecret(i.key, secret)
	var match *Token
	for idx := range tokens {
		if hmac.Equal(tokens[idx].SecretHash, want) {
			match = &tokens[idx]
			break
		}
	}

	now := i.now().UTC()
	switch {
	case match == nil:
		return nil, ErrInvalid
	case match.Consumed():
		return nil, ErrAlreadyConsumed
	case match.Expired(now):
		return nil, ErrExpired
	}

	ok, err := repo.ConsumeToken(ctx, match.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to consume %s token: %w", kind, err)
	}
	if !ok {
		return nil, ErrAlreadyConsumed
	}

	match.ConsumedAt = &now
	i.logger.DebugContext(ctx, "token redeemed",
		logger.AccountID(accountID), logger.TokenKind(string(kind)))

	return match, nil
}
