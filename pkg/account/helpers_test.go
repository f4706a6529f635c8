package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/credential"
	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/store/memory"
)

const (
	testLogin    = "a@x.com"
	testPassword = "pw1-long-enough"
)

type harness struct {
	svc     *account.Service
	store   *faultyStore
	clock   *clock
	events  *eventLog
	revoker *MockSessionRevoker
	cfg     account.Config
}

func testConfig() account.Config {
	cfg := account.DefaultConfig()
	cfg.TokenSecret = "test-token-secret-0123456789"
	cfg.HashCost = bcrypt.MinCost
	return cfg
}

func fastCredentials(cost int) *credential.Store {
	return credential.NewStore(credential.WithHasher(credential.Bcrypt(cost)))
}

func newHarness(t *testing.T, mutate ...func(*account.Config)) *harness {
	t.Helper()

	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}

	h := &harness{
		store:   &faultyStore{Store: memory.New()},
		clock:   &clock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)},
		events:  &eventLog{},
		revoker: &MockSessionRevoker{},
		cfg:     cfg,
	}
	h.revoker.On("RevokeAccount", mock.Anything, mock.Anything).Return(nil).Maybe()

	svc, err := account.New(h.store, cfg,
		account.WithClock(h.clock.Now),
		account.WithPublisher(h.events),
		account.WithSessionRevoker(h.revoker),
		account.WithCredentialStore(fastCredentials(bcrypt.MinCost)),
	)
	require.NoError(t, err)
	h.svc = svc
	return h
}

// key returns the link key carried by the latest event of kind.
func (h *harness) key(t *testing.T, kind event.Kind) string {
	t.Helper()
	e, ok := h.events.last(kind)
	require.True(t, ok, "no %s event", kind)
	require.NotEmpty(t, e.Get(event.KeyToken))
	return e.Get(event.KeyToken)
}

// registerActive registers and verifies an account.
func (h *harness) registerActive(t *testing.T, login, password string) *account.Account {
	t.Helper()
	ctx := context.Background()
	_, err := h.svc.Register(ctx, login, password)
	require.NoError(t, err)
	acc, err := h.svc.VerifyAccount(ctx, h.key(t, event.VerificationRequested))
	require.NoError(t, err)
	return acc
}
