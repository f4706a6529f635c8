package credential

import (
	"fmt"
	"strings"
)

// Algorithm names accepted by HasherByName.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Hasher is one password hashing scheme.
type Hasher interface {
	// Name returns the algorithm name.
	Name() string
	// Hash returns the encoded hash of password with a fresh salt.
	Hash(password []byte) (string, error)
	// Verify compares password with encoded in constant time.
	Verify(password []byte, encoded string) (bool, error)
	// Recognizes reports whether encoded was produced by this algorithm.
	Recognizes(encoded string) bool
	// Outdated reports whether encoded uses weaker parameters than the hasher.
	Outdated(encoded string) bool
}

// HashSettings selects and tunes a hasher. Each field applies to its own
// algorithm only; zero values pick the algorithm defaults.
type HashSettings struct {
	Algorithm  string
	BcryptCost int
	Argon2Time uint32
	// Argon2Memory is in KiB.
	Argon2Memory uint32
}

// NewHasher builds the hasher described by s.
func NewHasher(s HashSettings) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(s.Algorithm)) {
	case "", AlgorithmBcrypt:
		return Bcrypt(s.BcryptCost), nil
	case AlgorithmArgon2id:
		return Argon2id(Argon2Params{Time: s.Argon2Time, Memory: s.Argon2Memory}), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s.Algorithm)
	}
}
