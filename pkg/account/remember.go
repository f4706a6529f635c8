package account

import (
	"context"
	"crypto/hmac"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// Remember stores a new remember token for an active account, replacing any
// previous one, and returns its key and expiry. The key has the link key
// format and is meant for a long-lived cookie.
func (s *Service) Remember(ctx context.Context, accountID uuid.UUID) (string, time.Time, error) {
	var (
		key       string
		expiresAt time.Time
	)
	err := s.run(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.AccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return ErrAccountNotActive
		}
		key, expiresAt, err = s.saveRemember(ctx, o, acc.ID)
		return err
	})
	if err != nil {
		return "", time.Time{}, wrap("failed to remember account", err)
	}
	return key, expiresAt, nil
}

// Resume exchanges a remember key for the account and a rotated key. The
// presented key stops working. Any failure other than a lockout or a storage
// error is reported as ErrAuthenticationRequired.
func (s *Service) Resume(ctx context.Context, key string) (*Account, string, time.Time, error) {
	accountID, secret, err := token.ParseLinkKey(key)
	if err != nil {
		return nil, "", time.Time{}, ErrAuthenticationRequired
	}

	var (
		acc       *Account
		next      string
		expiresAt time.Time
		result    error
	)
	err = s.run(ctx, func(ctx context.Context, o *op) error {
		result = nil
		var err error
		acc, err = o.tx.AccountByID(ctx, accountID)
		if errors.Is(err, ErrAccountNotFound) {
			result = ErrAuthenticationRequired
			return nil
		}
		if err != nil {
			return err
		}

		rt, err := o.tx.RememberToken(ctx, acc.ID)
		if errors.Is(err, ErrNoRememberToken) {
			result = ErrAuthenticationRequired
			return nil
		}
		if err != nil {
			return err
		}
		if !hmac.Equal(rt.SecretHash, token.HashSecret([]byte(s.cfg.TokenSecret), secret)) {
			result = ErrAuthenticationRequired
			return nil
		}

		switch {
		case !acc.IsActive(), !o.now.Before(rt.ExpiresAt):
			result = ErrAuthenticationRequired
			return o.tx.DeleteRememberTokens(ctx, acc.ID)
		case acc.IsLocked(o.now):
			result = ErrAccountLocked
			return nil
		}

		next, expiresAt, err = s.saveRemember(ctx, o, acc.ID)
		return err
	})
	if err != nil {
		return nil, "", time.Time{}, wrap("failed to resume session", err)
	}
	if result != nil {
		s.logger.DebugContext(ctx, "remember token rejected",
			logger.AccountID(accountID), logger.Reason(reason(result)))
		return nil, "", time.Time{}, result
	}
	return acc, next, expiresAt, nil
}

// Forget deletes the account's remember token.
func (s *Service) Forget(ctx context.Context, accountID uuid.UUID) error {
	err := s.run(ctx, func(ctx context.Context, o *op) error {
		return o.tx.DeleteRememberTokens(ctx, accountID)
	})
	return wrap("failed to forget account", err)
}

func (s *Service) saveRemember(ctx context.Context, o *op, accountID uuid.UUID) (string, time.Time, error) {
	secret, err := token.NewSecret()
	if err != nil {
		return "", time.Time{}, err
	}
	rt := &RememberToken{
		AccountID:  accountID,
		SecretHash: token.HashSecret([]byte(s.cfg.TokenSecret), secret),
		ExpiresAt:  o.now.Add(s.cfg.RememberTTL),
		CreatedAt:  o.now,
	}
	if err := o.tx.SaveRememberToken(ctx, rt); err != nil {
		return "", time.Time{}, err
	}
	return token.LinkKey(accountID, secret), rt.ExpiresAt, nil
}
