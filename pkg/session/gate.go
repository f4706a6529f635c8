package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// Accounts is the part of account.Service the gate depends on.
type Accounts interface {
	Account(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Remember(ctx context.Context, accountID uuid.UUID) (string, time.Time, error)
	Resume(ctx context.Context, key string) (*account.Account, string, time.Time, error)
	Forget(ctx context.Context, accountID uuid.UUID) error
}

// RememberCookie is what a transport should persist on the client to allow
// resuming without a password.
type RememberCookie struct {
	Name      string
	Value     string
	ExpiresAt time.Time
}

// Gate decides whether a presented session or remember value belongs to an
// account that may act right now.
type Gate struct {
	store    Store
	accounts Accounts
	config   Config
	logger   *slog.Logger
	now      func() time.Time
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithConfig sets custom configuration
func WithConfig(cfg Config) GateOption {
	return func(g *Gate) {
		g.config = cfg
	}
}

// WithLogger sets the gate logger.
func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) GateOption {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGate returns a Gate over the session store and the account service.
func NewGate(store Store, accounts Accounts, opts ...GateOption) (*Gate, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if accounts == nil {
		return nil, ErrNoAccounts
	}
	g := &Gate{
		store:    store,
		accounts: accounts,
		config:   DefaultConfig(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.config.Validate(); err != nil {
		return nil, err
	}
	g.logger = g.logger.With(logger.Component("session"))
	return g, nil
}

// RequireActive is the single check deciding whether an account may act
// now. A nil, unverified or closed account requires authentication; a
// locked one is reported as locked.
func RequireActive(acc *account.Account, now time.Time) error {
	switch {
	case acc == nil, !acc.IsActive():
		return account.ErrAuthenticationRequired
	case acc.IsLocked(now):
		return account.ErrAccountLocked
	}
	return nil
}

// Login opens a session for an account that has just authenticated.
func (g *Gate) Login(ctx context.Context, acc *account.Account) (*Session, error) {
	now := g.now()
	if err := RequireActive(acc, now); err != nil {
		return nil, err
	}
	sess, err := NewSession(acc.ID, now, g.config.initialTTL())
	if err != nil {
		return nil, err
	}
	if err := g.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	g.logger.DebugContext(ctx, "session created", logger.AccountID(acc.ID))
	return sess.clone(), nil
}

// CurrentSession resolves a session token to its account. Sessions whose
// account is gone, closed or no longer active are deleted and reported as
// account.ErrAuthenticationRequired.
func (g *Gate) CurrentSession(ctx context.Context, token string) (*account.Account, error) {
	if token == "" {
		return nil, account.ErrAuthenticationRequired
	}

	sess, err := g.store.Get(ctx, token)
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
		return nil, account.ErrAuthenticationRequired
	case err != nil:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	acc, err := g.accounts.Account(ctx, sess.AccountID)
	if err != nil && !errors.Is(err, account.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to load session account: %w", err)
	}

	now := g.now()
	err = RequireActive(acc, now)
	if errors.Is(err, account.ErrAuthenticationRequired) {
		if derr := g.store.Delete(ctx, token); derr != nil {
			return nil, fmt.Errorf("failed to delete stale session: %w", derr)
		}
		g.logger.InfoContext(ctx, "stale session deleted", logger.AccountID(sess.AccountID))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if now.Sub(sess.LastActivityAt) >= g.config.ActivityUpdateThreshold {
		if err := g.store.Touch(ctx, token, now, g.config.expiry(sess.CreatedAt, now)); err != nil {
			g.logger.WarnContext(ctx, "failed to record session activity",
				logger.AccountID(sess.AccountID), logger.Error(err))
		}
	}
	return acc, nil
}

// Logout deletes the session.
func (g *Gate) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := g.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RevokeAccount ends every session of the account.
func (g *Gate) RevokeAccount(ctx context.Context, accountID uuid.UUID) error {
	if err := g.store.DeleteByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}

// Remember issues a remember cookie for the account, replacing any earlier one.
func (g *Gate) Remember(ctx context.Context, accountID uuid.UUID) (*RememberCookie, error) {
	value, expiresAt, err := g.accounts.Remember(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return g.cookie(value, expiresAt), nil
}

// Resume exchanges a remember cookie value for its account and a rotated
// cookie. The presented value stops working.
func (g *Gate) Resume(ctx context.Context, value string) (*account.Account, *RememberCookie, error) {
	if value == "" {
		return nil, nil, account.ErrAuthenticationRequired
	}
	acc, next, expiresAt, err := g.accounts.Resume(ctx, value)
	if err != nil {
		return nil, nil, err
	}
	return acc, g.cookie(next, expiresAt), nil
}

// Forget deletes the account's remember token.
func (g *Gate) Forget(ctx context.Context, accountID uuid.UUID) error {
	return g.accounts.Forget(ctx, accountID)
}

func (g *Gate) cookie(value string, expiresAt time.Time) *RememberCookie {
	return &RememberCookie{
		Name:      g.config.RememberCookieName,
		Value:     value,
		ExpiresAt: expiresAt,
	}
}
