package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// ChangeLogin changes the login of an active account. When
// Config.RequireLoginConfirmation is set the change stays pending: a
// login_change token bound to the old and new login is issued and
// LoginChangeRequested carries its link key. Otherwise the login changes at
// once and LoginChanged is emitted.
func (s *Service) ChangeLogin(ctx context.Context, accountID uuid.UUID, newLogin string) (*LoginChange, error) {
	newLogin = NormalizeLogin(newLogin)
	if err := validateLogin(newLogin); err != nil {
		return nil, err
	}

	var change *LoginChange
	err := s.run(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.AccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return ErrAccountNotActive
		}
		if acc.Login == newLogin {
			return ErrLoginUnchanged
		}
		if err := ensureLoginFree(ctx, o.tx, newLogin); err != nil {
			return err
		}

		change = &LoginChange{AccountID: acc.ID, OldLogin: acc.Login, NewLogin: newLogin}

		if s.cfg.RequireLoginConfirmation {
			key, expiresAt, err := s.issue(ctx, o, acc.ID, token.KindLoginChange,
				token.WithData(map[string]string{
					event.KeyOldLogin: acc.Login,
					event.KeyNewLogin: newLogin,
				}))
			if err != nil {
				return err
			}
			change.Pending = true
			change.ExpiresAt = expiresAt
			o.record(event.LoginChangeRequested, acc.ID, map[string]string{
				event.KeyOldLogin:  acc.Login,
				event.KeyNewLogin:  newLogin,
				event.KeyToken:     key,
				event.KeyExpiresAt: formatTime(expiresAt),
			})
			return nil
		}

		return s.applyLogin(ctx, o, acc, newLogin)
	})
	if err != nil {
		return nil, wrap("failed to change login", err)
	}
	return change, nil
}

// ConfirmLoginChange redeems a login_change link key and applies the change.
// It fails with ErrTokenInvalid if the login changed since the token was
// issued and with ErrDuplicateLogin if the new login was taken meanwhile.
func (s *Service) ConfirmLoginChange(ctx context.Context, key string) (*Account, error) {
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

		tok, err := s.issuer.Redeem(ctx, o.tx, acc.ID, token.KindLoginChange, secret)
		if err != nil {
			return err
		}
		if !acc.IsActive() {
			return ErrAccountNotActive
		}

		newLogin := tok.Data[event.KeyNewLogin]
		if tok.Data[event.KeyOldLogin] != acc.Login || newLogin == "" {
			return ErrTokenInvalid
		}
		if err := ensureLoginFree(ctx, o.tx, newLogin); err != nil {
			return err
		}
		return s.applyLogin(ctx, o, acc, newLogin)
	})
	if err != nil {
		return nil, wrap("failed to confirm login change", err)
	}
	return acc, nil
}

func (s *Service) applyLogin(ctx context.Context, o *op, acc *Account, newLogin string) error {
	oldLogin := acc.Login
	acc.Login = newLogin
	acc.UpdatedAt = o.now
	if err := o.tx.UpdateAccount(ctx, acc); err != nil {
		return err
	}
	o.record(event.LoginChanged, acc.ID, map[string]string{
		event.KeyOldLogin: oldLogin,
		event.KeyNewLogin: newLogin,
	})
	s.logger.InfoContext(ctx, "login changed", logger.AccountID(acc.ID))
	return nil
}

func ensureLoginFree(ctx context.Context, tx Tx, login string) error {
	_, err := tx.AccountByLogin(ctx, login)
	switch {
	case err == nil:
		return ErrDuplicateLogin
	case errors.Is(err, ErrAccountNotFound):
		return nil
	default:
		return err
	}
}
