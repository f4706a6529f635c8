package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SecretLength is the number of random bytes in a secret.
const SecretLength = 32

// NewSecret returns SecretLength random bytes encoded as unpadded base64url.
func NewSecret() (string, error) {
	b := make([]byte, SecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret returns HMAC-SHA256(key, secret).
func HashSecret(key []byte, secret string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(secret))
	return h.Sum(nil)
}

// LinkKey joins an account id and a secret into the string put in links.
func LinkKey(accountID uuid.UUID, secret string) string {
	return accountID.String() + "_" + secret
}

// ParseLinkKey splits a LinkKey. Any malformed key yields ErrInvalid.
func ParseLinkKey(key string) (uuid.UUID, string, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(key), "_")
	if !ok || secret == "" {
		return uuid.Nil, "", ErrInvalid
	}
	accountID, err := uuid.Parse(id)
	if err != nil || accountID == uuid.Nil {
		return uuid.Nil, "", ErrInvalid
	}
	if _, err := base64.RawURLEncoding.DecodeString(secret); err != nil {
		return uuid.Nil, "", ErrInvalid
	}
	return accountID, secret, nil
}
