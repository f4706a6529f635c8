package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/pg"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

var _ account.Tx = (*tx)(nil)

type tx struct {
	tx pgx.Tx
}

const accountColumns = `id, login, password_hash, status, failed_logins, locked_until, created_at, updated_at`

func scanAccount(row pgx.Row) (*account.Account, error) {
	var (
		a      account.Account
		status string
	)
	err := row.Scan(&a.ID, &a.Login, &a.PasswordHash, &status, &a.FailedLogins, &a.LockedUntil, &a.CreatedAt, &a.UpdatedAt)
	if pg.IsNotFoundError(err) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	a.Status = account.Status(status)
	return &a, nil
}

func (t *tx) AccountByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return scanAccount(t.tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
}

func (t *tx) AccountByLogin(ctx context.Context, login string) (*account.Account, error) {
	return scanAccount(t.tx.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE login = $1 FOR UPDATE`, login))
}

func (t *tx) CreateAccount(ctx context.Context, a *account.Account) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Login, a.PasswordHash, string(a.Status), a.FailedLogins, a.LockedUntil, a.CreatedAt, a.UpdatedAt)
	return accountWriteErr(err)
}

func (t *tx) UpdateAccount(ctx context.Context, a *account.Account) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE accounts
		    SET login = $2, password_hash = $3, status = $4, failed_logins = $5,
		        locked_until = $6, updated_at = $7
		  WHERE id = $1`,
		a.ID, a.Login, a.PasswordHash, string(a.Status), a.FailedLogins, a.LockedUntil, a.UpdatedAt)
	if err != nil {
		return accountWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func accountWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case pg.IsDuplicateKeyError(err):
		return account.ErrDuplicateLogin
	default:
		return storageErr(err)
	}
}

func (t *tx) RememberToken(ctx context.Context, accountID uuid.UUID) (*account.RememberToken, error) {
	var r account.RememberToken
	err := t.tx.QueryRow(ctx,
		`SELECT account_id, secret_hash, expires_at, created_at FROM remember_tokens WHERE account_id = $1`,
		accountID).Scan(&r.AccountID, &r.SecretHash, &r.ExpiresAt, &r.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, account.ErrNoRememberToken
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return &r, nil
}

func (t *tx) SaveRememberToken(ctx context.Context, r *account.RememberToken) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO remember_tokens (account_id, secret_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (account_id) DO UPDATE
		    SET secret_hash = EXCLUDED.secret_hash,
		        expires_at = EXCLUDED.expires_at,
		        created_at = EXCLUDED.created_at`,
		r.AccountID, r.SecretHash, r.ExpiresAt, r.CreatedAt)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (t *tx) DeleteRememberTokens(ctx context.Context, accountID uuid.UUID) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM remember_tokens WHERE account_id = $1`, accountID); err != nil {
		return storageErr(err)
	}
	return nil
}

func (t *tx) CreateToken(ctx context.Context, tok *token.Token) error {
	data := tok.Data
	if data == nil {
		data = map[string]string{}
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO account_tokens (id, account_id, kind, secret_hash, data, issued_at, expires_at, consumed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tok.ID, tok.AccountID, string(tok.Kind), tok.SecretHash, data, tok.IssuedAt, tok.ExpiresAt, tok.ConsumedAt)
	if err != nil {
		return storageErr(err)
	}
	return nil
}

func (t *tx) FindTokens(ctx context.Context, accountID uuid.UUID, kind token.Kind) ([]token.Token, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT id, account_id, kind, secret_hash, data, issued_at, expires_at, consumed_at
		   FROM account_tokens
		  WHERE account_id = $1 AND kind = $2
		  ORDER BY issued_at DESC`,
		accountID, string(kind))
	if err != nil {
		return nil, storageErr(err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (token.Token, error) {
		var (
			tok  token.Token
			kind string
		)
		err := row.Scan(&tok.ID, &tok.AccountID, &kind, &tok.SecretHash, &tok.Data, &tok.IssuedAt, &tok.ExpiresAt, &tok.ConsumedAt)
		tok.Kind = token.Kind(kind)
		if len(tok.Data) == 0 {
			tok.Data = nil
		}
		return tok, err
	})
	if err != nil {
		return nil, storageErr(err)
	}
	return out, nil
}

func (t *tx) ConsumeToken(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`UPDATE account_tokens SET consumed_at = $2 WHERE id = $1 AND consumed_at IS NULL`, id, at)
	if err != nil {
		return false, storageErr(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *tx) DeleteTokens(ctx context.Context, accountID uuid.UUID, kinds ...token.Kind) error {
	var err error
	if len(kinds) == 0 {
		_, err = t.tx.Exec(ctx, `DELETE FROM account_tokens WHERE account_id = $1`, accountID)
	} else {
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = string(k)
		}
		_, err = t.tx.Exec(ctx, `DELETE FROM account_tokens WHERE account_id = $1 AND kind = ANY($2)`, accountID, names)
	}
	if err != nil {
		return storageErr(err)
	}
	return nil
}
