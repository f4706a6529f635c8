// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool from a Config populated by PG_* environment
// variables and retries until the database answers a ping. Migrate applies
// goose migrations read from an fs.FS, so callers can ship their schema with
// go:embed. Healthcheck returns a probe suitable for readiness checks, and the
// Is* helpers classify pgx errors without leaking driver types into callers.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations, "migrations", cfg, log); err != nil {
//	    return err
//	}
package pg
