package account

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// CloseAccount moves the account to the terminal closed status, deletes its
// tokens and remember token, and ends its sessions after commit.
// AccountClosed lets other components clean up data tied to the account.
func (s *Service) CloseAccount(ctx context.Context, accountID uuid.UUID) error {
	err := s.run(ctx, func(ctx context.Context, o *op) error {
		acc, err := o.tx.AccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if err := transition(ctx, acc, StatusClosed); err != nil {
			return err
		}
		acc.clearLockout()
		acc.UpdatedAt = o.now
		if err := o.tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		if err := o.tx.DeleteTokens(ctx, acc.ID); err != nil {
			return err
		}
		if err := o.tx.DeleteRememberTokens(ctx, acc.ID); err != nil {
			return err
		}

		o.revoke = append(o.revoke, acc.ID)
		o.record(event.AccountClosed, acc.ID, map[string]string{event.KeyLogin: acc.Login})
		return nil
	})
	if err != nil {
		return wrap("failed to close account", err)
	}

	s.logger.InfoContext(ctx, "account closed", logger.AccountID(accountID))
	return nil
}
