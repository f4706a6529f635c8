package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/credential"
	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// Service runs account operations against a Store.
type Service struct {
	store     Store
	cfg       Config
	creds     *credential.Store
	issuer    *token.Issuer
	publisher event.Publisher
	revoker   SessionRevoker
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher sets where committed events go. Defaults to event.Nop.
func WithPublisher(p event.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithSessionRevoker sets the collaborator that ends live sessions after
// credential changes and closure.
func WithSessionRevoker(r SessionRevoker) Option {
	return func(s *Service) {
		s.revoker = r
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCredentialStore replaces the credential store built from Config.
func WithCredentialStore(cs *credential.Store) Option {
	return func(s *Service) {
		if cs != nil {
			s.creds = cs
		}
	}
}

// New validates cfg and returns a Service.
func New(store Store, cfg Config, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		store:     store,
		cfg:       cfg,
		publisher: event.Nop,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.creds == nil {
		hasher, err := credential.NewHasher(cfg.HashSettings())
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		s.creds = credential.NewStore(
			credential.WithHasher(hasher),
			credential.WithConcurrency(cfg.HashConcurrency),
			credential.WithLogger(s.logger),
		)
	}

	issuer, err := token.NewIssuer([]byte(cfg.TokenSecret),
		token.WithClock(s.now),
		token.WithIssuerLogger(s.logger),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	s.issuer = issuer

	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Account returns the account with the given id.
func (s *Service) Account(ctx context.Context, id uuid.UUID) (*Account, error) {
	var acc *Account
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		acc, err = tx.AccountByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, wrap("failed to load account", err)
	}
	return acc, nil
}

// Sweep deletes expired tokens and remember tokens. Expired tokens are
// rejected at redemption anyway; this only reclaims storage.
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpired(ctx, s.clock())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return n, nil
}

// op is the state of one operation: its transaction, the events it
// produced and the accounts whose sessions must end after commit.
type op struct {
	tx     Tx
	now    time.Time
	events event.Recorder
	revoke []uuid.UUID
}

func (o *op) record(kind event.Kind, accountID uuid.UUID, payload map[string]string) {
	o.events.Record(kind, accountID, o.now, payload)
}

// run executes fn in a transaction. On commit it publishes the recorded
// events and revokes sessions; on rollback it does neither.
func (s *Service) run(ctx context.Context, fn func(ctx context.Context, o *op) error) error {
	o := &op{}
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		// A retried transaction starts from scratch.
		*o = op{tx: tx, now: s.clock()}
		return fn(ctx, o)
	})
	if err != nil {
		return err
	}

	for _, id := range o.revoke {
		s.revokeSessions(ctx, id)
	}
	if o.events.Len() > 0 {
		if err := s.publisher.Publish(ctx, o.events.Events()...); err != nil {
			// The state change is durable; delivery failures are reported, not returned.
			s.logger.ErrorContext(ctx, "failed to publish account events",
				logger.Count(int64(o.events.Len())), logger.Error(err))
		}
	}
	return nil
}

func (s *Service) revokeSessions(ctx context.Context, accountID uuid.UUID) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeAccount(ctx, accountID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke sessions",
			logger.AccountID(accountID), logger.Error(err))
	}
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// issue creates a token of kind and returns the link key for it.
func (s *Service) issue(ctx context.Context, o *op, accountID uuid.UUID, kind token.Kind, opts ...token.IssueOption) (string, time.Time, error) {
	tok, secret, err := s.issuer.Issue(ctx, o.tx, accountID, kind, s.cfg.TokenTTL(kind), opts...)
	if err != nil {
		return "", time.Time{}, err
	}
	return token.LinkKey(accountID, secret), tok.ExpiresAt, nil
}

// errDecoy rolls back a transaction that only mirrored the store work of a
// real operation.
var errDecoy = errors.New("account: decoy transaction")

// decoy performs the same token writes as issue against a random account id
// and rolls the transaction back, so that a request for a login with nothing
// to send costs as much as one that issues a token.
func (s *Service) decoy(ctx context.Context, o *op, kind token.Kind) error {
	_, _, _ = s.issuer.Issue(ctx, o.tx, uuid.New(), kind, s.cfg.TokenTTL(kind))
	return errDecoy
}

// runUniform is run for operations whose outcome must not reveal whether a
// login exists. A decoy rollback counts as success.
func (s *Service) runUniform(ctx context.Context, fn func(ctx context.Context, o *op) error) error {
	err := s.run(ctx, fn)
	if errors.Is(err, errDecoy) {
		return nil
	}
	return err
}

// wrap adds context to infrastructure errors and leaves domain errors as
// they are.
func wrap(msg string, err error) error {
	if err == nil || isDomain(err) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
