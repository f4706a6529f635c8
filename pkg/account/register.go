package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// Register creates an account. The password may be empty for flows that set
// it later. When verification is required the account starts unverified and
// a VerificationRequested event carries the verification link key;
// otherwise it starts active.
func (s *Service) Register(ctx context.Context, login, password string) (*Account, error) {
	login = NormalizeLogin(login)
	if err := validateLogin(login); err != nil {
		return nil, err
	}
	if err := s.validatePassword("password", password, false); err != nil {
		return nil, err
	}

	var hash string
	if password != "" {
		var err error
		if hash, err = s.creds.Hash(ctx, password); err != nil {
			return nil, err
		}
	}

	var acc *Account
	err := s.run(ctx, func(ctx context.Context, o *op) error {
		if _, err := o.tx.AccountByLogin(ctx, login); err == nil {
			return ErrDuplicateLogin
		} else if !errors.Is(err, ErrAccountNotFound) {
			return err
		}

		acc = &Account{
			ID:           uuid.New(),
			Login:        login,
			PasswordHash: hash,
			Status:       StatusActive,
			CreatedAt:    o.now,
			UpdatedAt:    o.now,
		}
		if s.cfg.RequireVerification {
			acc.Status = StatusUnverified
		}
		if err := o.tx.CreateAccount(ctx, acc); err != nil {
			return err
		}
		o.record(event.AccountCreated, acc.ID, map[string]string{event.KeyLogin: acc.Login})

		if acc.Status == StatusUnverified {
			return s.requestVerification(ctx, o, acc)
		}
		return nil
	})
	if err != nil {
		return nil, wrap("failed to register account", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		logger.AccountID(acc.ID), logger.Login(acc.Login))
	return acc, nil
}

func (s *Service) requestVerification(ctx context.Context, o *op, acc *Account) error {
	key, expiresAt, err := s.issue(ctx, o, acc.ID, token.KindVerification)
	if err != nil {
		return err
	}
	o.record(event.VerificationRequested, acc.ID, map[string]string{
		event.KeyLogin:     acc.Login,
		event.KeyToken:     key,
		event.KeyExpiresAt: formatTime(expiresAt),
	})
	return nil
}

// ResendVerification issues a fresh verification token for an unverified
// account, invalidating the previous one. It returns nil and makes the same
// store calls whether or not the login exists or needs verification.
func (s *Service) ResendVerification(ctx context.Context, login string) error {
	login = NormalizeLogin(login)
	if err := validateLogin(login); err != nil {
		return err
	}

	err := s.runUniform(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.AccountByLogin(ctx, login)
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return err
		}
		if acc == nil || acc.Status != StatusUnverified {
			return s.decoy(ctx, o, token.KindVerification)
		}
		return s.requestVerification(ctx, o, acc)
	})
	return wrap("failed to resend verification", err)
}

// VerifyAccount redeems a verification link key and activates the account.
// Redeeming a key for an account that is already active fails with
// ErrAlreadyActive and leaves the token unconsumed.
func (s *Service) VerifyAccount(ctx context.Context, key string) (*Account, error) {
	return s.verify(ctx, key, "")
}

// VerifyAccountWithPassword works like VerifyAccount and also sets the
// account password, for accounts registered without one.
func (s *Service) VerifyAccountWithPassword(ctx context.Context, key, password string) (*Account, error) {
	if err := s.validatePassword("password", password, true); err != nil {
		return nil, err
	}
	hash, err := s.creds.Hash(ctx, password)
	if err != nil {
		return nil, err
	}
	return s.verify(ctx, key, hash)
}

func (s *Service) verify(ctx context.Context, key, hash string) (*Account, error) {
	accountID, secret, err := token.ParseLinkKey(key)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	var acc *Account
	err = s.run(ctx, func(ctx context.Context, o *op) error {
		var err error
		acc, err = o.tx.AccountByID(ctx, accountID)
		if errors.Is(err, ErrAccountNotFound) {
			return ErrTokenInvalid
		}
		if err != nil {
			return err
		}

		if _, err := s.issuer.Redeem(ctx, o.tx, acc.ID, token.KindVerification, secret); err != nil {
			return err
		}
		if acc.Status == StatusActive {
			return ErrAlreadyActive
		}
		if err := transition(ctx, acc, StatusActive); err != nil {
			return err
		}
		if hash != "" {
			acc.PasswordHash = hash
		}
		acc.UpdatedAt = o.now
		if err := o.tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}

		o.record(event.AccountVerified, acc.ID, map[string]string{event.KeyLogin: acc.Login})
		return nil
	})
	if err != nil {
		return nil, wrap("failed to verify account", err)
	}

	s.logger.InfoContext(ctx, "account verified", logger.AccountID(acc.ID))
	return acc, nil
}
