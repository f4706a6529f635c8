package account

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrymomot/accountkit/pkg/credential"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

// Config controls account policies. It is loaded from ACCOUNT_* variables.
type Config struct {
	RequireVerification      bool `env:"ACCOUNT_REQUIRE_VERIFICATION" envDefault:"true"`
	RequireLoginConfirmation bool `env:"ACCOUNT_REQUIRE_LOGIN_CONFIRMATION" envDefault:"true"`

	// Password lengths are in bytes.
	PasswordMinLength int `env:"ACCOUNT_PASSWORD_MIN_LENGTH" envDefault:"8"`
	PasswordMaxLength int `env:"ACCOUNT_PASSWORD_MAX_LENGTH" envDefault:"72"`

	VerificationTTL  time.Duration `env:"ACCOUNT_VERIFICATION_TTL" envDefault:"72h"`
	PasswordResetTTL time.Duration `env:"ACCOUNT_PASSWORD_RESET_TTL" envDefault:"1h"`
	LoginChangeTTL   time.Duration `env:"ACCOUNT_LOGIN_CHANGE_TTL" envDefault:"24h"`
	RememberTTL      time.Duration `env:"ACCOUNT_REMEMBER_TTL" envDefault:"720h"`

	HashAlgorithm string `env:"ACCOUNT_HASH_ALGORITHM" envDefault:"bcrypt"`
	// HashCost is the bcrypt cost.
	HashCost int `env:"ACCOUNT_HASH_COST" envDefault:"12"`
	// Argon2Time and Argon2Memory (KiB) tune argon2id. Zero keeps the
	// defaults of 3 passes over 64 MiB.
	Argon2Time      uint32 `env:"ACCOUNT_ARGON2_TIME" envDefault:"0"`
	Argon2Memory    uint32 `env:"ACCOUNT_ARGON2_MEMORY" envDefault:"0"`
	HashConcurrency int    `env:"ACCOUNT_HASH_CONCURRENCY" envDefault:"0"`

	// TokenSecret keys the HMAC of token and remember secrets.
	TokenSecret string `env:"ACCOUNT_TOKEN_SECRET,required"`

	// MaxFailedLogins consecutive failures lock the account for
	// LockoutDuration. Zero disables lockout.
	MaxFailedLogins int           `env:"ACCOUNT_MAX_FAILED_LOGINS" envDefault:"10"`
	LockoutDuration time.Duration `env:"ACCOUNT_LOCKOUT_DURATION" envDefault:"15m"`
}

// DefaultConfig returns the documented defaults. TokenSecret is left empty.
func DefaultConfig() Config {
	return Config{
		RequireVerification:      true,
		RequireLoginConfirmation: true,
		PasswordMinLength:        8,
		PasswordMaxLength:        72,
		VerificationTTL:          72 * time.Hour,
		PasswordResetTTL:         time.Hour,
		LoginChangeTTL:           24 * time.Hour,
		RememberTTL:              30 * 24 * time.Hour,
		HashAlgorithm:            credential.AlgorithmBcrypt,
		HashCost:                 12,
		MaxFailedLogins:          10,
		LockoutDuration:          15 * time.Minute,
	}
}

// TokenTTL returns the lifetime of tokens of kind.
func (c Config) TokenTTL(kind token.Kind) time.Duration {
	switch kind {
	case token.KindVerification:
		return c.VerificationTTL
	case token.KindPasswordReset:
		return c.PasswordResetTTL
	case token.KindLoginChange:
		return c.LoginChangeTTL
	default:
		return 0
	}
}

// HashSettings returns the password hasher settings.
func (c Config) HashSettings() credential.HashSettings {
	return credential.HashSettings{
		Algorithm:    c.HashAlgorithm,
		BcryptCost:   c.HashCost,
		Argon2Time:   c.Argon2Time,
		Argon2Memory: c.Argon2Memory,
	}
}

// Validate checks the config for values the service cannot run with.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.TokenSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.PasswordMinLength, validation.Required, validation.Min(1)),
		validation.Field(&c.PasswordMaxLength, validation.Required, validation.Min(c.PasswordMinLength)),
		validation.Field(&c.VerificationTTL, validation.Required),
		validation.Field(&c.PasswordResetTTL, validation.Required),
		validation.Field(&c.LoginChangeTTL, validation.Required),
		validation.Field(&c.RememberTTL, validation.Required),
		validation.Field(&c.HashAlgorithm, validation.In(credential.AlgorithmBcrypt, credential.AlgorithmArgon2id)),
		validation.Field(&c.MaxFailedLogins, validation.Min(0)),
	)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if c.MaxFailedLogins > 0 && c.LockoutDuration <= 0 {
		return errors.Join(ErrInvalidConfig, errors.New("lockout duration must be positive when lockout is enabled"))
	}
	return nil
}
