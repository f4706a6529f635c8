package credential

import "errors"

var (
	// ErrCorruptCredential means the stored hash cannot be parsed by any known algorithm.
	ErrCorruptCredential = errors.New("credential: corrupt stored hash")

	// ErrPasswordTooLong is returned by bcrypt for passwords over 72 bytes.
	ErrPasswordTooLong = errors.New("credential: password too long")

	// ErrUnknownAlgorithm is returned by NewHasher for unsupported names.
	ErrUnknownAlgorithm = errors.New("credential: unknown hash algorithm")
)
