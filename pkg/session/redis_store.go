package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in redis. Each session is a JSON value that
// expires with the session; a set per account indexes its tokens so that
// DeleteByAccount does not need to scan the keyspace.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	indexTTL time.Duration
	now      func() time.Time
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix sets the key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithIndexTTL sets how long an account index outlives its last write.
// It should not be shorter than the session lifetime.
func WithIndexTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.indexTTL = d
		}
	}
}

// NewRedisStore creates a redis-backed session store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	cfg := DefaultConfig()
	s := &RedisStore{
		client:   client,
		prefix:   cfg.RedisKeyPrefix,
		indexTTL: cfg.TTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) sessionKey(token string) string {
	return s.prefix + "token:" + token
}

func (s *RedisStore) accountKey(id uuid.UUID) string {
	return s.prefix + "account:" + id.String()
}

// Create stores a new session
func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" || session.AccountID == uuid.Nil {
		return ErrInvalidSession
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrSessionExpired
	}

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	idx := s.accountKey(session.AccountID)
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.Token), data, ttl)
		pipe.SAdd(ctx, idx, session.Token)
		pipe.Expire(ctx, idx, s.indexTTL)
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// Get retrieves a session by token
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Join(ErrStoreFailure, err)
	}
	if session.Expired(s.now()) {
		_ = s.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// Touch updates the last activity time and the expiry
func (s *RedisStore) Touch(ctx context.Context, token string, lastActivity, expiresAt time.Time) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}
	session.LastActivityAt = lastActivity
	session.ExpiresAt = expiresAt

	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Delete(ctx, token)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	// XX keeps a concurrent Delete from being undone.
	err = s.client.SetArgs(ctx, s.sessionKey(token), data, redis.SetArgs{
		Mode: "XX",
		TTL:  ttl,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	if err := s.client.Expire(ctx, s.accountKey(session.AccountID), s.indexTTL).Err(); err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// Delete removes a session by token
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	key := s.sessionKey(token)
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	var session Session
	_ = json.Unmarshal(data, &session)

	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if session.AccountID != uuid.Nil {
			pipe.SRem(ctx, s.accountKey(session.AccountID), token)
		}
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// DeleteByAccount removes all sessions for a specific account
func (s *RedisStore) DeleteByAccount(ctx context.Context, accountID uuid.UUID) error {
	idx := s.accountKey(accountID)
	tokens, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}

	// One DEL per key so cluster clients can route each by its own slot.
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, token := range tokens {
			pipe.Del(ctx, s.sessionKey(token))
		}
		pipe.Del(ctx, idx)
		return nil
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

// DeleteExpired is a no-op: redis expires session keys itself, and stale
// index members are dropped with their account index.
func (s *RedisStore) DeleteExpired(ctx context.Context) error {
	return ctx.Err()
}

var _ Store = (*RedisStore)(nil)
