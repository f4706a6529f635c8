package token_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/token"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newIssuer(t *testing.T) (*token.Issuer, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	issuer, err := token.NewIssuer([]byte("test-signing-key"), token.WithClock(c.Now))
	require.NoError(t, err)
	return issuer, c
}

func TestNewIssuer_RequiresKey(t *testing.T) {
	t.Parallel()
	_, err := token.NewIssuer(nil)
	assert.ErrorIs(t, err, token.ErrMissingKey)
}

func TestIssuer_IssueStoresOnlyHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	issuer, c := newIssuer(t)
	repo := newMemRepo()
	accountID := uuid.New()

	tok, secret, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour,
		token.WithData(map[string]string{"k": "v"}))
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	assert.Equal(t, accountID, tok.AccountID)
	assert.Equal(t, token.KindVerification, tok.Kind)
	assert.Equal(t, c.Now().Add(time.Hour), tok.ExpiresAt)
	assert.Equal(t, token.HashSecret([]byte("test-signing-key"), secret), tok.SecretHash)
	assert.NotContains(t, string(tok.SecretHash), secret)
	assert.Equal(t, "v", tok.Data["k"])
	assert.Nil(t, tok.ConsumedAt)
}

func TestIssuer_RedeemOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	issuer, _ := newIssuer(t)
	repo := newMemRepo()
	accountID := uuid.New()

	_, secret, err := issuer.Issue(ctx, repo, accountID, token.KindPasswordReset, time.Hour)
	require.NoError(t, err)

	tok, err := issuer.Redeem(ctx, repo, accountID, token.KindPasswordReset, secret)
	require.NoError(t, err)
	assert.True(t, tok.Consumed())

	_, err = issuer.Redeem(ctx, repo, accountID, token.KindPasswordReset, secret)
	assert.ErrorIs(t, err, token.ErrAlreadyConsumed)
}

func TestIssuer_RedeemFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newIssuer(t)
		repo := newMemRepo()
		accountID := uuid.New()
		_, _, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour)
		require.NoError(t, err)

		other, err := token.NewSecret()
		require.NoError(t, err)
		_, err = issuer.Redeem(ctx, repo, accountID, token.KindVerification, other)
		assert.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("empty secret", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newIssuer(t)
		_, err := issuer.Redeem(ctx, newMemRepo(), uuid.New(), token.KindVerification, "")
		assert.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("wrong kind", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newIssuer(t)
		repo := newMemRepo()
		accountID := uuid.New()
		_, secret, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour)
		require.NoError(t, err)

		_, err = issuer.Redeem(ctx, repo, accountID, token.KindPasswordReset, secret)
		assert.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("wrong account", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newIssuer(t)
		repo := newMemRepo()
		_, secret, err := issuer.Issue(ctx, repo, uuid.New(), token.KindVerification, time.Hour)
		require.NoError(t, err)

		_, err = issuer.Redeem(ctx, repo, uuid.New(), token.KindVerification, secret)
		assert.ErrorIs(t, err, token.ErrInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		issuer, c := newIssuer(t)
		repo := newMemRepo()
		accountID := uuid.New()
		_, secret, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour)
		require.NoError(t, err)

		c.Advance(time.Hour)
		_, err = issuer.Redeem(ctx, repo, accountID, token.KindVerification, secret)
		assert.ErrorIs(t, err, token.ErrExpired)
	})

	t.Run("different key", func(t *testing.T) {
		t.Parallel()
		issuer, _ := newIssuer(t)
		repo := newMemRepo()
		accountID := uuid.New()
		_, secret, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour)
		require.NoError(t, err)

		rotated, err := token.NewIssuer([]byte("another-key"))
		require.NoError(t, err)
		_, err = rotated.Redeem(ctx, repo, accountID, token.KindVerification, secret)
		assert.ErrorIs(t, err, token.ErrInvalid)
	})
}

func TestIssuer_ReissueInvalidatesPrevious(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	issuer, _ := newIssuer(t)
	repo := newMemRepo()
	accountID := uuid.New()

	_, first, err := issuer.Issue(ctx, repo, accountID, token.KindPasswordReset, time.Hour)
	require.NoError(t, err)
	_, _, err = issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour)
	require.NoError(t, err)
	_, second, err := issuer.Issue(ctx, repo, accountID, token.KindPasswordReset, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.count(), "one reset token and one verification token")

	_, err = issuer.Redeem(ctx, repo, accountID, token.KindPasswordReset, first)
	assert.ErrorIs(t, err, token.ErrInvalid)

	_, err = issuer.Redeem(ctx, repo, accountID, token.KindPasswordReset, second)
	assert.NoError(t, err)
}

func TestIssuer_ConcurrentRedeemSingleWinner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	issuer, _ := newIssuer(t)
	repo := newMemRepo()
	accountID := uuid.New()

	_, secret, err := issuer.Issue(ctx, repo, accountID, token.KindVerification, time.Hour)
	require.NoError(t, err)

	var wins, consumed atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := issuer.Redeem(ctx, repo, accountID, token.KindVerification, secret)
			switch {
			case err == nil:
				wins.Add(1)
			case assert.ErrorIs(t, err, token.ErrAlreadyConsumed):
				consumed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(15), consumed.Load())
}
