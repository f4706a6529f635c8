package account_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/event"
)

func TestChangeLogin_WithConfirmation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	acc := h.registerActive(t, testLogin, testPassword)

	change, err := h.svc.ChangeLogin(ctx, acc.ID, "New@X.com")
	require.NoError(t, err)
	assert.True(t, change.Pending)
	assert.Equal(t, testLogin, change.OldLogin)
	assert.Equal(t, "new@x.com", change.NewLogin)

	stored, err := h.svc.Account(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, testLogin, stored.Login, "login is unchanged until confirmed")

	requested, ok := h.events.last(event.LoginChangeRequested)
	require.True(t, ok)
	assert.Equal(t, "new@x.com", requested.Get(event.KeyNewLogin))

	updated, err := h.svc.ConfirmLoginChange(ctx, h.key(t, event.LoginChangeRequested))
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", updated.Login)

	changed, ok := h.events.last(event.LoginChanged)
	require.True(t, ok)
	assert.Equal(t, testLogin, changed.Get(event.KeyOldLogin))

	_, err = h.svc.Authenticate(ctx, "new@x.com", testPassword)
	assert.NoError(t, err)
	_, err = h.svc.Authenticate(ctx, testLogin, testPassword)
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestChangeLogin_WithoutConfirmation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, func(c *account.Config) { c.RequireLoginConfirmation = false })
	ctx := context.Background()
	acc := h.registerActive(t, testLogin, testPassword)

	change, err := h.svc.ChangeLogin(ctx, acc.ID, "new@x.com")
	require.NoError(t, err)
	assert.False(t, change.Pending)

	stored, err := h.svc.Account(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@x.com", stored.Login)
	_, ok := h.events.last(event.LoginChangeRequested)
	assert.False(t, ok)
	_, ok = h.events.last(event.LoginChanged)
	assert.True(t, ok)
}

func TestChangeLogin_Errors(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	acc := h.registerActive(t, testLogin, testPassword)
	h.registerActive(t, "b@x.com", testPassword)

	_, err := h.svc.ChangeLogin(ctx, acc.ID, "B@X.COM")
	assert.ErrorIs(t, err, account.ErrDuplicateLogin)

	_, err = h.svc.ChangeLogin(ctx, acc.ID, " A@x.com ")
	assert.ErrorIs(t, err, account.ErrLoginUnchanged)

	_, err = h.svc.ChangeLogin(ctx, acc.ID, "nope")
	assert.ErrorIs(t, err, account.ErrInvalidInput)

	_, err = h.svc.ChangeLogin(ctx, uuid.New(), "c@x.com")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}

func TestConfirmLoginChange_TargetTakenMeanwhile(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	acc := h.registerActive(t, testLogin, testPassword)

	_, err := h.svc.ChangeLogin(ctx, acc.ID, "c@x.com")
	require.NoError(t, err)
	key := h.key(t, event.LoginChangeRequested)

	h.registerActive(t, "c@x.com", testPassword)

	_, err = h.svc.ConfirmLoginChange(ctx, key)
	assert.ErrorIs(t, err, account.ErrDuplicateLogin)
}

func TestConfirmLoginChange_StaleAfterAnotherChange(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	acc := h.registerActive(t, testLogin, testPassword)

	_, err := h.svc.ChangeLogin(ctx, acc.ID, "first@x.com")
	require.NoError(t, err)
	first := h.key(t, event.LoginChangeRequested)

	_, err = h.svc.ChangeLogin(ctx, acc.ID, "second@x.com")
	require.NoError(t, err)
	second := h.key(t, event.LoginChangeRequested)

	_, err = h.svc.ConfirmLoginChange(ctx, first)
	assert.ErrorIs(t, err, account.ErrTokenInvalid)

	updated, err := h.svc.ConfirmLoginChange(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "second@x.com", updated.Login)
}
