package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/event"
)

func TestCloseAccount_IsTerminal(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	acc := h.registerActive(t, testLogin, testPassword)

	rememberKey, _, err := h.svc.Remember(ctx, acc.ID)
	require.NoError(t, err)
	require.NoError(t, h.svc.RequestPasswordReset(ctx, testLogin))
	resetKey := h.key(t, event.PasswordResetRequested)

	require.NoError(t, h.svc.CloseAccount(ctx, acc.ID))

	closed, ok := h.events.last(event.AccountClosed)
	require.True(t, ok)
	assert.Equal(t, acc.ID, closed.AccountID)
	h.revoker.AssertCalled(t, "RevokeAccount", mock.Anything, acc.ID)

	stored, err := h.svc.Account(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusClosed, stored.Status)

	// Nothing leads out of closed.
	assert.ErrorIs(t, h.svc.CloseAccount(ctx, acc.ID), account.ErrAccountNotActive)
	_, err = h.svc.Authenticate(ctx, testLogin, testPassword)
	assert.ErrorIs(t, err, account.ErrAccountNotActive)
	_, err = h.svc.ResetPassword(ctx, resetKey, "brand-new-password")
	assert.ErrorIs(t, err, account.ErrTokenInvalid, "tokens were deleted on close")
	_, _, _, err = h.svc.Resume(ctx, rememberKey)
	assert.ErrorIs(t, err, account.ErrAuthenticationRequired)
	_, _, err = h.svc.Remember(ctx, acc.ID)
	assert.ErrorIs(t, err, account.ErrAccountNotActive)
	_, err = h.svc.ChangeLogin(ctx, acc.ID, "new@x.com")
	assert.ErrorIs(t, err, account.ErrAccountNotActive)
	assert.ErrorIs(t, h.svc.ChangePassword(ctx, acc.ID, testPassword, "brand-new-password"), account.ErrAccountNotActive)

	stored, err = h.svc.Account(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, account.StatusClosed, stored.Status)

	_, err = h.svc.Register(ctx, testLogin, testPassword)
	assert.ErrorIs(t, err, account.ErrDuplicateLogin, "closed accounts keep their login")
}

func TestCloseAccount_Unverified(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	acc, err := h.svc.Register(ctx, testLogin, testPassword)
	require.NoError(t, err)
	key := h.key(t, event.VerificationRequested)

	require.NoError(t, h.svc.CloseAccount(ctx, acc.ID))

	_, err = h.svc.VerifyAccount(ctx, key)
	assert.ErrorIs(t, err, account.ErrTokenInvalid)
}

func TestCloseAccount_Unknown(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	assert.ErrorIs(t, h.svc.CloseAccount(context.Background(), uuid.New()), account.ErrAccountNotFound)
}
