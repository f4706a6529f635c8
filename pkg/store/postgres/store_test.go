package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/credential"
	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/pg"
	"github.com/dmitrymomot/accountkit/pkg/store/postgres"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("accounts"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := pg.Config{
		ConnectionString: connStr,
		MaxConns:         10,
		RetryAttempts:    3,
		RetryInterval:    time.Second,
		MigrationsTable:  "accountkit_migrations",
	}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, cfg, logger.Discard()))
	return pool
}

type events struct {
	mu  sync.Mutex
	all []event.Event
}

func (e *events) Publish(_ context.Context, evs ...event.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, evs...)
	return nil
}

func (e *events) key(t *testing.T, kind event.Kind) string {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.all) - 1; i >= 0; i-- {
		if e.all[i].Kind == kind {
			return e.all[i].Get(event.KeyToken)
		}
	}
	t.Fatalf("no %s event", kind)
	return ""
}

func newService(t *testing.T, store account.Store, pub event.Publisher) *account.Service {
	t.Helper()
	cfg := account.DefaultConfig()
	cfg.TokenSecret = "postgres-test-secret-0123456789"
	cfg.HashCost = bcrypt.MinCost
	svc, err := account.New(store, cfg,
		account.WithPublisher(pub),
		account.WithCredentialStore(credential.NewStore(credential.WithHasher(credential.Bcrypt(bcrypt.MinCost)))),
	)
	require.NoError(t, err)
	return svc
}

func TestStore(t *testing.T) {
	pool := setupPostgres(t)
	store := postgres.New(pool)
	ctx := context.Background()

	t.Run("migrations are idempotent", func(t *testing.T) {
		require.NoError(t, postgres.Migrate(ctx, pool, pg.Config{MigrationsTable: "accountkit_migrations"}, logger.Discard()))
	})

	t.Run("account round trip", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		acc := &account.Account{
			ID:        uuid.New(),
			Login:     "roundtrip@example.com",
			Status:    account.StatusUnverified,
			CreatedAt: now,
			UpdatedAt: now,
		}
		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			return tx.CreateAccount(ctx, acc)
		}))

		err := store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			got, err := tx.AccountByLogin(ctx, acc.Login)
			if err != nil {
				return err
			}
			assert.Equal(t, acc.ID, got.ID)
			assert.Equal(t, account.StatusUnverified, got.Status)
			assert.Nil(t, got.LockedUntil)
			assert.True(t, acc.CreatedAt.Equal(got.CreatedAt))

			until := now.Add(time.Hour)
			got.Status = account.StatusActive
			got.FailedLogins = 2
			got.LockedUntil = &until
			return tx.UpdateAccount(ctx, got)
		})
		require.NoError(t, err)

		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			got, err := tx.AccountByID(ctx, acc.ID)
			require.NoError(t, err)
			assert.Equal(t, account.StatusActive, got.Status)
			assert.Equal(t, 2, got.FailedLogins)
			require.NotNil(t, got.LockedUntil)
			return nil
		}))
	})

	t.Run("missing account", func(t *testing.T) {
		err := store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			_, err := tx.AccountByID(ctx, uuid.New())
			return err
		})
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		assert.False(t, account.IsRetryable(err))
	})

	t.Run("duplicate login", func(t *testing.T) {
		now := time.Now()
		create := func(id uuid.UUID) error {
			return store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
				return tx.CreateAccount(ctx, &account.Account{
					ID: id, Login: "dup@example.com", Status: account.StatusActive, CreatedAt: now, UpdatedAt: now,
				})
			})
		}
		require.NoError(t, create(uuid.New()))
		assert.ErrorIs(t, create(uuid.New()), account.ErrDuplicateLogin)
	})

	t.Run("rollback on error", func(t *testing.T) {
		now := time.Now()
		id := uuid.New()
		boom := errors.New("boom")
		err := store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			if err := tx.CreateAccount(ctx, &account.Account{
				ID: id, Login: "rollback@example.com", Status: account.StatusActive, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		err = store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			_, err := tx.AccountByID(ctx, id)
			return err
		})
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
	})

	t.Run("tokens", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		accID := uuid.New()
		first := &token.Token{
			ID: uuid.New(), AccountID: accID, Kind: token.KindLoginChange, SecretHash: []byte{1, 2, 3},
			Data: map[string]string{"new_login": "b@example.com"}, IssuedAt: now.Add(-time.Minute), ExpiresAt: now.Add(time.Hour),
		}
		second := &token.Token{
			ID: uuid.New(), AccountID: accID, Kind: token.KindLoginChange, SecretHash: []byte{4, 5, 6},
			IssuedAt: now, ExpiresAt: now.Add(time.Hour),
		}

		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			if err := tx.CreateAccount(ctx, &account.Account{
				ID: accID, Login: "tokens@example.com", Status: account.StatusActive, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			if err := tx.CreateToken(ctx, first); err != nil {
				return err
			}
			return tx.CreateToken(ctx, second)
		}))

		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			found, err := tx.FindTokens(ctx, accID, token.KindLoginChange)
			require.NoError(t, err)
			require.Len(t, found, 2)
			assert.Equal(t, second.ID, found[0].ID, "newest first")
			assert.Equal(t, "b@example.com", found[1].Data["new_login"])
			assert.Equal(t, []byte{1, 2, 3}, found[1].SecretHash)

			ok, err := tx.ConsumeToken(ctx, first.ID, now)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = tx.ConsumeToken(ctx, first.ID, now)
			require.NoError(t, err)
			assert.False(t, ok, "second consume loses")

			return tx.DeleteTokens(ctx, accID, token.KindVerification)
		}))

		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			found, err := tx.FindTokens(ctx, accID, token.KindLoginChange)
			require.NoError(t, err)
			require.Len(t, found, 2)
			assert.NotNil(t, found[1].ConsumedAt)

			require.NoError(t, tx.DeleteTokens(ctx, accID))
			found, err = tx.FindTokens(ctx, accID, token.KindLoginChange)
			require.NoError(t, err)
			assert.Empty(t, found)
			return nil
		}))
	})

	t.Run("remember tokens", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		accID := uuid.New()
		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			if err := tx.CreateAccount(ctx, &account.Account{
				ID: accID, Login: "remember@example.com", Status: account.StatusActive, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			_, err := tx.RememberToken(ctx, accID)
			assert.ErrorIs(t, err, account.ErrNoRememberToken)

			for _, hash := range [][]byte{{1}, {2}} {
				if err := tx.SaveRememberToken(ctx, &account.RememberToken{
					AccountID: accID, SecretHash: hash, ExpiresAt: now.Add(time.Hour), CreatedAt: now,
				}); err != nil {
					return err
				}
			}
			rt, err := tx.RememberToken(ctx, accID)
			require.NoError(t, err)
			assert.Equal(t, []byte{2}, rt.SecretHash, "save replaces")

			require.NoError(t, tx.DeleteRememberTokens(ctx, accID))
			_, err = tx.RememberToken(ctx, accID)
			assert.ErrorIs(t, err, account.ErrNoRememberToken)
			return nil
		}))
	})

	t.Run("delete expired", func(t *testing.T) {
		now := time.Now().UTC()
		accID := uuid.New()
		require.NoError(t, store.InTx(ctx, func(ctx context.Context, tx account.Tx) error {
			if err := tx.CreateAccount(ctx, &account.Account{
				ID: accID, Login: "expired@example.com", Status: account.StatusActive, CreatedAt: now, UpdatedAt: now,
			}); err != nil {
				return err
			}
			if err := tx.CreateToken(ctx, &token.Token{
				ID: uuid.New(), AccountID: accID, Kind: token.KindPasswordReset, SecretHash: []byte{1},
				IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
			}); err != nil {
				return err
			}
			return tx.SaveRememberToken(ctx, &account.RememberToken{
				AccountID: accID, SecretHash: []byte{1}, ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
			})
		}))

		n, err := store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, int64(2))
	})
}

func TestStore_AccountLifecycle(t *testing.T) {
	pool := setupPostgres(t)
	pub := &events{}
	svc := newService(t, postgres.New(pool), pub)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Life@Example.com", "pw-long-enough-1")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "life@example.com", "pw-long-enough-1")
	assert.ErrorIs(t, account.Public(err), account.ErrAuthenticationFailed, "unverified accounts cannot log in")

	acc, err := svc.VerifyAccount(ctx, pub.key(t, event.VerificationRequested))
	require.NoError(t, err)
	assert.Equal(t, account.StatusActive, acc.Status)

	_, err = svc.VerifyAccount(ctx, pub.key(t, event.VerificationRequested))
	assert.Error(t, err, "verification key works once")

	got, err := svc.Authenticate(ctx, "LIFE@example.com", "pw-long-enough-1")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	key, _, err := svc.Remember(ctx, acc.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "life@example.com"))
	_, err = svc.ResetPassword(ctx, pub.key(t, event.PasswordResetRequested), "pw-long-enough-2")
	require.NoError(t, err)

	_, _, _, err = svc.Resume(ctx, key)
	assert.ErrorIs(t, err, account.ErrAuthenticationRequired, "reset drops remember tokens")

	_, err = svc.Authenticate(ctx, "life@example.com", "pw-long-enough-2")
	require.NoError(t, err)

	require.NoError(t, svc.CloseAccount(ctx, acc.ID))
	_, err = svc.Authenticate(ctx, "life@example.com", "pw-long-enough-2")
	assert.ErrorIs(t, account.Public(err), account.ErrAuthenticationFailed)
}

func TestStore_ConcurrentRedemption(t *testing.T) {
	pool := setupPostgres(t)
	pub := &events{}
	svc := newService(t, postgres.New(pool), pub)
	ctx := context.Background()

	_, err := svc.Register(ctx, "race@example.com", "")
	require.NoError(t, err)
	key := pub.key(t, event.VerificationRequested)

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.VerifyAccountWithPassword(ctx, key, "pw-long-enough-1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}
