package credential

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/dmitrymomot/accountkit/pkg/logger"
)

// Store hashes and verifies passwords with a bounded number of concurrent
// hashing operations.
type Store struct {
	primary Hasher
	known   []Hasher
	sem     *semaphore.Weighted
	logger  *slog.Logger

	decoyOnce sync.Once
	decoy     string
}

// Option configures a Store.
type Option func(*Store)

// WithHasher sets the hasher used for new hashes. Hashes of the other
// built-in algorithms remain verifiable.
func WithHasher(h Hasher) Option {
	return func(s *Store) {
		if h != nil {
			s.primary = h
		}
	}
}

// WithConcurrency limits the number of hash or verify calls running at once.
// Values below 1 mean runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(s *Store) {
		if n < 1 {
			n = runtime.NumCPU()
		}
		s.sem = semaphore.NewWeighted(int64(n))
	}
}

// WithLogger sets the logger used for corrupt hash reports.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a Store. Without options it hashes with bcrypt at the
// default cost and allows runtime.NumCPU() concurrent operations.
func NewStore(opts ...Option) *Store {
	s := &Store{
		primary: Bcrypt(0),
		sem:     semaphore.NewWeighted(int64(runtime.NumCPU())),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.known = []Hasher{s.primary}
	for _, h := range []Hasher{Bcrypt(0), Argon2id(DefaultArgon2Params)} {
		if h.Name() != s.primary.Name() {
			s.known = append(s.known, h)
		}
	}
	return s
}

// Algorithm returns the name of the primary hasher.
func (s *Store) Algorithm() string {
	return s.primary.Name()
}

// Hash hashes password with the primary hasher.
func (s *Store) Hash(ctx context.Context, password string) (string, error) {
	if err := s.acquire(ctx); err != nil {
		return "", err
	}
	defer s.sem.Release(1)

	encoded, err := s.primary.Hash([]byte(password))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return encoded, nil
}

// Verify reports whether password matches encoded. An unrecognised or
// malformed hash yields ErrCorruptCredential.
func (s *Store) Verify(ctx context.Context, password, encoded string) (bool, error) {
	h := s.hasherFor(encoded)
	if h == nil {
		s.logger.WarnContext(ctx, "unrecognised password hash format",
			logger.Component("credential"))
		return false, ErrCorruptCredential
	}

	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.sem.Release(1)

	ok, err := h.Verify([]byte(password), encoded)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to verify password hash",
			logger.Component("credential"), logger.Error(err))
		return false, err
	}
	return ok, nil
}

// NeedsRehash reports whether encoded should be replaced by a fresh hash
// from the primary hasher.
func (s *Store) NeedsRehash(encoded string) bool {
	if !s.primary.Recognizes(encoded) {
		return true
	}
	return s.primary.Outdated(encoded)
}

// Burn spends the same effort as a failed Verify without a stored hash.
func (s *Store) Burn(ctx context.Context, password string) {
	s.decoyOnce.Do(func() {
		decoy, err := s.primary.Hash([]byte("decoy-password-never-matches"))
		if err == nil {
			s.decoy = decoy
		}
	})
	if s.decoy == "" {
		return
	}
	_, _ = s.Verify(ctx, password, s.decoy)
}

func (s *Store) hasherFor(encoded string) Hasher {
	for _, h := range s.known {
		if h.Recognizes(encoded) {
			return h
		}
	}
	return nil
}

func (s *Store) acquire(ctx context.Context) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire hashing slot: %w", err)
	}
	return nil
}
