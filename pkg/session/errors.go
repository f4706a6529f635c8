package session

import "errors"

var (
	// ErrInvalidSession indicates a session without a token or account
	ErrInvalidSession = errors.New("session.invalid")

	// ErrSessionExpired indicates the session has expired
	ErrSessionExpired = errors.New("session.expired")

	// ErrSessionNotFound indicates no session was found
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrNoStore indicates no store is configured
	ErrNoStore = errors.New("session.no_store")

	// ErrNoAccounts indicates no account service is configured
	ErrNoAccounts = errors.New("session.no_accounts")

	// ErrInvalidConfig indicates a configuration the gate cannot run with
	ErrInvalidConfig = errors.New("session.invalid_config")

	// ErrStoreFailure wraps backend errors of a session store
	ErrStoreFailure = errors.New("session.store_failure")
)
