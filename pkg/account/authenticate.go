package account

import (
	"context"
	"errors"

	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// Authenticate checks a login and password. Failures are one of
// ErrAccountNotFound, ErrAccountNotActive, ErrInvalidCredentials,
// ErrCorruptCredential or ErrAccountLocked; pass them through Public before
// showing them to users.
//
// Consecutive wrong passwords on an active account count towards
// Config.MaxFailedLogins; reaching it locks the account for
// Config.LockoutDuration and emits AccountLocked. A successful login resets
// the counter and upgrades an outdated hash.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*Account, error) {
	acc, err := s.authenticate(ctx, NormalizeLogin(login), password)
	if err != nil {
		s.logger.InfoContext(ctx, "authentication failed",
			logger.Login(login), logger.Reason(reason(err)))
		return nil, err
	}
	return acc, nil
}

func (s *Service) authenticate(ctx context.Context, login, password string) (*Account, error) {
	// Every early exit below burns one verification so that unknown logins
	// cost as much as wrong passwords.
	if validateLogin(login) != nil {
		s.creds.Burn(ctx, password)
		return nil, ErrAccountNotFound
	}

	var snapshot *Account
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		snapshot, err = tx.AccountByLogin(ctx, login)
		return err
	})
	if err != nil {
		s.creds.Burn(ctx, password)
		return nil, wrap("failed to load account", err)
	}

	switch {
	case !snapshot.IsActive():
		s.creds.Burn(ctx, password)
		return nil, ErrAccountNotActive
	case snapshot.IsLocked(s.clock()):
		s.creds.Burn(ctx, password)
		return nil, ErrAccountLocked
	case !snapshot.HasPassword():
		s.creds.Burn(ctx, password)
		return nil, ErrInvalidCredentials
	}

	ok, err := s.creds.Verify(ctx, password, snapshot.PasswordHash)
	if err != nil {
		return nil, err
	}

	var rehash string
	if ok && s.creds.NeedsRehash(snapshot.PasswordHash) {
		if rehash, err = s.creds.Hash(ctx, password); err != nil {
			s.logger.WarnContext(ctx, "failed to upgrade password hash",
				logger.AccountID(snapshot.ID), logger.Error(err))
			rehash = ""
		}
	}

	// The outcome is decided inside the transaction but returned after it,
	// so that a failed attempt still commits its counter update.
	var (
		acc    *Account
		result error
	)
	err = s.run(ctx, func(ctx context.Context, o *op) error {
		var err error
		acc, err = o.tx.AccountByID(ctx, snapshot.ID)
		if err != nil {
			return err
		}
		result = nil

		switch {
		case !acc.IsActive():
			result = ErrAccountNotActive
			return nil
		case acc.IsLocked(o.now):
			result = ErrAccountLocked
			return nil
		case acc.PasswordHash != snapshot.PasswordHash:
			// The password changed while it was being verified.
			result = ErrInvalidCredentials
			return nil
		case !ok:
			result = ErrInvalidCredentials
			return s.recordFailure(ctx, o, acc)
		}

		changed := acc.FailedLogins != 0 || acc.LockedUntil != nil
		acc.clearLockout()
		if rehash != "" {
			acc.PasswordHash = rehash
			changed = true
		}
		if !changed {
			return nil
		}
		acc.UpdatedAt = o.now
		return o.tx.UpdateAccount(ctx, acc)
	})
	if err != nil {
		return nil, wrap("failed to authenticate", err)
	}
	if result != nil {
		return nil, result
	}
	return acc, nil
}

func (s *Service) recordFailure(ctx context.Context, o *op, acc *Account) error {
	if s.cfg.MaxFailedLogins <= 0 {
		return nil
	}

	acc.FailedLogins++
	if acc.FailedLogins >= s.cfg.MaxFailedLogins {
		until := o.now.Add(s.cfg.LockoutDuration)
		acc.LockedUntil = &until
		acc.FailedLogins = 0
		o.record(event.AccountLocked, acc.ID, map[string]string{
			event.KeyLogin: acc.Login,
			event.KeyUntil: formatTime(until),
		})
		s.logger.WarnContext(ctx, "account locked after repeated failed logins",
			logger.AccountID(acc.ID), logger.Count(int64(s.cfg.MaxFailedLogins)))
	}
	acc.UpdatedAt = o.now
	return o.tx.UpdateAccount(ctx, acc)
}

// reason is the internal label logged for an authentication failure.
func reason(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrAccountNotActive):
		return "not_active"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrCorruptCredential):
		return "corrupt_credential"
	case errors.Is(err, ErrAccountLocked):
		return "locked"
	case errors.Is(err, ErrAuthenticationRequired):
		return "authentication_required"
	case IsRetryable(err):
		return "storage"
	default:
		return "error"
	}
}
