package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// RequestPasswordReset issues a password reset token for an active account
// and emits PasswordResetRequested. It returns nil and makes the same store
// calls whether or not the login exists.
func (s *Service) RequestPasswordReset(ctx context.Context, login string) error {
	login = NormalizeLogin(login)
	if err := validateLogin(login); err != nil {
		return err
	}

	err := s.runUniform(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.AccountByLogin(ctx, login)
		if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return err
		}
		if acc == nil || !acc.IsActive() {
			return s.decoy(ctx, o, token.KindPasswordReset)
		}

		key, expiresAt, err := s.issue(ctx, o, acc.ID, token.KindPasswordReset)
		if err != nil {
			return err
		}
		o.record(event.PasswordResetRequested, acc.ID, map[string]string{
			event.KeyLogin:     acc.Login,
			event.KeyToken:     key,
			event.KeyExpiresAt: formatTime(expiresAt),
		})
		return nil
	})
	if err != nil {
		return wrap("failed to request password reset", err)
	}
	return nil
}

// ResetPassword redeems a password reset link key and sets a new password.
// It clears any lockout, deletes the remember token and, after commit, ends
// every session of the account.
func (s *Service) ResetPassword(ctx context.Context, key, newPassword string) (*Account, error) {
	accountID, secret, err := token.ParseLinkKey(key)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := s.validatePassword("new_password", newPassword, true); err != nil {
		return nil, err
	}
	hash, err := s.creds.Hash(ctx, newPassword)
	if err != nil {
		return nil, err
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
		if _, err := s.issuer.Redeem(ctx, o.tx, acc.ID, token.KindPasswordReset, secret); err != nil {
			return err
		}
		if !acc.IsActive() {
			return ErrAccountNotActive
		}

		acc.PasswordHash = hash
		acc.clearLockout()
		acc.UpdatedAt = o.now
		if err := o.tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		if err := o.tx.DeleteRememberTokens(ctx, acc.ID); err != nil {
			return err
		}

		o.revoke = append(o.revoke, acc.ID)
		o.record(event.PasswordReset, acc.ID, map[string]string{event.KeyLogin: acc.Login})
		return nil
	})
	if err != nil {
		return nil, wrap("failed to reset password", err)
	}

	s.logger.InfoContext(ctx, "password reset", logger.AccountID(acc.ID))
	return acc, nil
}

// ChangePassword replaces the password of an active account after checking
// the current one. Like ResetPassword it deletes the remember token and ends
// every session after commit.
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, current, next string) error {
	if err := s.validatePassword("new_password", next, true); err != nil {
		return err
	}

	snapshot, err := s.Account(ctx, accountID)
	if err != nil {
		return err
	}
	if !snapshot.IsActive() {
		return ErrAccountNotActive
	}
	if !snapshot.HasPassword() {
		s.creds.Burn(ctx, current)
		return ErrInvalidCredentials
	}

	ok, err := s.creds.Verify(ctx, current, snapshot.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := s.creds.Hash(ctx, next)
	if err != nil {
		return err
	}

	err = s.run(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.AccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return ErrAccountNotActive
		}
		if acc.PasswordHash != snapshot.PasswordHash {
			return ErrInvalidCredentials
		}

		acc.PasswordHash = hash
		acc.UpdatedAt = o.now
		if err := o.tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		if err := o.tx.DeleteRememberTokens(ctx, acc.ID); err != nil {
			return err
		}

		o.revoke = append(o.revoke, acc.ID)
		o.record(event.PasswordChanged, acc.ID, map[string]string{event.KeyLogin: acc.Login})
		return nil
	})
	if err != nil {
		return wrap("failed to change password", err)
	}

	s.logger.InfoContext(ctx, "password changed", logger.AccountID(accountID))
	return nil
}
