package session

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Config holds session configuration
type Config struct {
	// IdleTimeout ends a session that saw no activity for this long.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"2h"`

	// TTL is the maximum lifetime of a session regardless of activity.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// ActivityUpdateThreshold is the minimum time between activity updates
	ActivityUpdateThreshold time.Duration `env:"SESSION_ACTIVITY_UPDATE_THRESHOLD" envDefault:"5m"`

	// CleanupInterval for expired sessions in the memory store (0 to disable)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// RememberCookieName is the name handed out with remember cookies.
	RememberCookieName string `env:"SESSION_REMEMBER_COOKIE_NAME" envDefault:"remember_token"`

	// RedisKeyPrefix namespaces the keys of the redis store.
	RedisKeyPrefix string `env:"SESSION_REDIS_KEY_PREFIX" envDefault:"accountkit:session:"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		IdleTimeout:             2 * time.Hour,
		TTL:                     30 * 24 * time.Hour,
		ActivityUpdateThreshold: 5 * time.Minute,
		CleanupInterval:         5 * time.Minute,
		RememberCookieName:      "remember_token",
		RedisKeyPrefix:          "accountkit:session:",
	}
}

// Validate checks the config for values the gate cannot run with.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.IdleTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Duration(0))),
		validation.Field(&c.ActivityUpdateThreshold, validation.Min(time.Duration(0))),
		validation.Field(&c.CleanupInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.RememberCookieName, validation.Required),
		validation.Field(&c.RedisKeyPrefix, validation.Required),
	)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}

// initialTTL is how long a fresh session lives before its first refresh.
func (c Config) initialTTL() time.Duration {
	if c.IdleTimeout > 0 && c.IdleTimeout < c.TTL {
		return c.IdleTimeout
	}
	return c.TTL
}

// expiry returns the next expiry time (min of idle and max lifetime)
func (c Config) expiry(createdAt, now time.Time) time.Time {
	maxExpiry := createdAt.Add(c.TTL)
	if c.IdleTimeout <= 0 {
		return maxExpiry
	}
	idleExpiry := now.Add(c.IdleTimeout)
	if maxExpiry.Before(idleExpiry) {
		return maxExpiry
	}
	return idleExpiry
}
