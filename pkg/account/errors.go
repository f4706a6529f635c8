package account

import (
	"errors"

	"github.com/dmitrymomot/accountkit/pkg/credential"
	"github.com/dmitrymomot/accountkit/pkg/token"
)

var (
	ErrDuplicateLogin         = errors.New("account: login already in use")
	ErrAccountNotFound        = errors.New("account: not found")
	ErrAccountNotActive       = errors.New("account: not active")
	ErrInvalidCredentials     = errors.New("account: invalid credentials")
	ErrAuthenticationRequired = errors.New("account: authentication required")
	ErrAccountLocked          = errors.New("account: temporarily locked")
	ErrAlreadyActive          = errors.New("account: already active")
	ErrLoginUnchanged         = errors.New("account: new login equals the current one")
	ErrInvalidInput           = errors.New("account: invalid input")
	ErrInvalidTransition      = errors.New("account: invalid status transition")
	ErrNoRememberToken        = errors.New("account: no remember token")
	ErrInvalidConfig          = errors.New("account: invalid config")

	// ErrAuthenticationFailed is the only authentication failure callers
	// should expose to end users. See Public.
	ErrAuthenticationFailed = errors.New("account: authentication failed")

	// ErrStorage marks infrastructure failures. Store implementations wrap
	// driver errors with it; operations failing with it may be retried.
	ErrStorage = errors.New("account: storage failure")
)

// Token and credential errors are re-exported so callers need one import.
var (
	ErrTokenExpired         = token.ErrExpired
	ErrTokenInvalid         = token.ErrInvalid
	ErrTokenAlreadyConsumed = token.ErrAlreadyConsumed
	ErrCorruptCredential    = credential.ErrCorruptCredential
)

// Public maps an authentication error to what may be shown outside the
// process. Failures that would reveal whether a login exists, or in which
// state it is, become ErrAuthenticationFailed. Other errors pass through.
func Public(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrAccountNotActive),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrCorruptCredential):
		return ErrAuthenticationFailed
	default:
		return err
	}
}

// IsRetryable reports whether err is an infrastructure failure. Domain
// errors, token errors included, are never retryable.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorage)
}

// isDomain reports whether err is one of the package's own outcomes, which
// are returned to callers without additional wrapping.
func isDomain(err error) bool {
	for _, target := range []error{
		ErrDuplicateLogin, ErrAccountNotFound, ErrAccountNotActive,
		ErrInvalidCredentials, ErrAuthenticationRequired, ErrAccountLocked,
		ErrAlreadyActive, ErrLoginUnchanged, ErrInvalidInput,
		ErrInvalidTransition, ErrNoRememberToken,
		ErrTokenExpired, ErrTokenInvalid, ErrTokenAlreadyConsumed,
		ErrCorruptCredential,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
