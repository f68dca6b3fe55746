// Package models defines server-side data models persisted in the database.
package models

import "time"

// Account is a user identity with its credential hash and lifecycle flags.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	Roles        RoleSet
	// Active is false for soft-deleted accounts.
	Active bool

	// PasswordChangedAt invalidates every token issued before it.
	PasswordChangedAt *time.Time
	// TokensRevokedAt is the last deactivation instant. Tokens issued
	// before it stay invalid after a restore.
	TokensRevokedAt *time.Time

	PasswordResetDigest  string
	PasswordResetExpires *time.Time

	LoginAttempts int
	LockUntil     *time.Time
	LastLogin     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Locked reports whether the account is locked out at instant now.
func (a *Account) Locked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// Identity is the authenticated subject of a request.
type Identity struct {
	AccountID string
	Roles     RoleSet
}
