package postgres

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/pg"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the goose files.
const MigrationsDir = "migrations"

// Migrate applies the schema of the store to the database behind pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, Migrations, MigrationsDir, cfg, log)
}

// Store implements account.Store on PostgreSQL.
type Store struct {
	pool     *pgxpool.Pool
	attempts int
}

// Option configures a Store.
type Option func(*Store)

// WithRetryAttempts sets how many times a transaction is run when it fails
// with a serialization failure or a deadlock.
func WithRetryAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// New returns a Store over pool. Run Migrate first.
func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, attempts: 3}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InTx runs fn in a read committed transaction. Account rows read through
// the transaction are locked until it ends, which serializes operations on
// one account. Serialization failures and deadlocks rerun fn.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx account.Tx) error) error {
	var err, fnErr error
	for range s.attempts {
		fnErr = nil
		err = pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ptx pgx.Tx) error {
			fnErr = fn(ctx, &tx{tx: ptx})
			return fnErr
		})
		if err == nil || !pg.IsRetryableError(err) {
			break
		}
	}
	switch {
	case err == nil:
		return nil
	case fnErr != nil:
		// tx methods already wrap driver failures with account.ErrStorage.
		return fnErr
	default:
		return storageErr(err)
	}
}

// DeleteExpired removes tokens and remember tokens that expired at now.
func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	for _, q := range []string{
		`DELETE FROM account_tokens WHERE expires_at <= $1`,
		`DELETE FROM remember_tokens WHERE expires_at <= $1`,
	} {
		tag, err := s.pool.Exec(ctx, q, now)
		if err != nil {
			return total, storageErr(err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}

func storageErr(err error) error {
	return fmt.Errorf("%w: %w", account.ErrStorage, err)
}

var _ account.Store = (*Store)(nil)
