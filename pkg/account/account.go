package account

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusActive     Status = "active"
	StatusClosed     Status = "closed"
)

func (s Status) String() string { return string(s) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusUnverified, StatusActive, StatusClosed:
		return true
	}
	return false
}

// Account is the persisted account record.
type Account struct {
	ID           uuid.UUID
	Login        string
	PasswordHash string
	Status       Status
	FailedLogins int
	LockedUntil  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a password was ever set.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// IsActive reports whether the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsLocked reports whether a lockout is in effect at now.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.LockedUntil != nil {
		t := *a.LockedUntil
		c.LockedUntil = &t
	}
	return &c
}

func (a *Account) clearLockout() {
	a.FailedLogins = 0
	a.LockedUntil = nil
}

// RememberToken is the persisted half of a remember-me credential. Each
// account has at most one.
type RememberToken struct {
	AccountID  uuid.UUID
	SecretHash []byte
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Clone returns a deep copy.
func (r *RememberToken) Clone() *RememberToken {
	if r == nil {
		return nil
	}
	c := *r
	c.SecretHash = append([]byte(nil), r.SecretHash...)
	return &c
}

// LoginChange describes the outcome of ChangeLogin.
type LoginChange struct {
	AccountID uuid.UUID
	OldLogin  string
	NewLogin  string
	// Pending is true when the change waits for confirmation through a
	// login_change token.
	Pending   bool
	ExpiresAt time.Time
}
