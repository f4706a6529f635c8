package token

import "errors"

var (
	// ErrInvalid means no token of the requested kind matches the secret.
	ErrInvalid = errors.New("token: invalid")

	// ErrExpired means the matching token is past its expiry.
	ErrExpired = errors.New("token: expired")

	// ErrAlreadyConsumed means the matching token was redeemed before.
	ErrAlreadyConsumed = errors.New("token: already consumed")

	// ErrMissingKey is returned by NewIssuer for an empty server key.
	ErrMissingKey = errors.New("token: empty signing key")
)
