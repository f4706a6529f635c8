// Package postgres implements account.Store on PostgreSQL with pgx.
//
// Every InTx call is one transaction. Account reads take a row lock
// (SELECT ... FOR UPDATE), so concurrent operations on the same account run
// one after another; token consumption is a conditional UPDATE, so exactly
// one of two racing redemptions wins. Driver failures are wrapped with
// account.ErrStorage; unique violations on the login become
// account.ErrDuplicateLogin.
//
// The schema ships as embedded goose migrations:
//
//	if err := postgres.Migrate(ctx, pool, pgCfg, log); err != nil {
//	    return err
//	}
//	store := postgres.New(pool)
package postgres
