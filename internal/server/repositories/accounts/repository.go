// Package accounts declares the credential store contract and its
// PostgreSQL and in-memory implementations.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// EmailScope selects which accounts take part in the duplicate-email check.
type EmailScope int

const (
	// EmailScopeActive checks only active accounts, so the email of a
	// soft-deleted account can be registered again.
	EmailScopeActive EmailScope = iota
	// EmailScopeGlobal checks every stored account.
	EmailScopeGlobal
)

// ParseEmailScope maps a config value ("active", "global") to an EmailScope.
func ParseEmailScope(s string) (EmailScope, bool) {
	switch s {
	case "", "active":
		return EmailScopeActive, true
	case "global":
		return EmailScopeGlobal, true
	}
	return 0, false
}

// Repository defines account persistence. Implementations return
// common.ErrorNotFound for missing rows and bump updated_at on every mutation.
type Repository interface {
	// Create stores a new active account. It fails with common.ErrDuplicateEmail
	// when another account in scope already uses the email.
	Create(ctx context.Context, account *models.Account, scope EmailScope) (*models.Account, error)

	GetByID(ctx context.Context, id string) (*models.Account, error)

	// GetActiveByEmail looks up an active account by its normalized email.
	GetActiveByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByResetDigest returns the active account holding an unexpired
	// password reset digest.
	GetByResetDigest(ctx context.Context, digest string, now time.Time) (*models.Account, error)

	// ListByIDs returns the accounts found among ids, keyed by id.
	ListByIDs(ctx context.Context, ids []string) (map[string]*models.Account, error)

	// SetActive flips the soft-delete flag. Deactivation records now as the
	// tokens revocation instant. It fails with common.ErrAlreadyInState
	// when the account already has the requested state, and with
	// common.ErrDuplicateEmail when a restore collides with an active account.
	SetActive(ctx context.Context, id string, active bool, now time.Time) error

	SetRoles(ctx context.Context, id string, roles models.RoleSet, now time.Time) error

	// SetPassword stores a new hash, records changedAt as the password change
	// instant and clears any pending reset and lockout.
	SetPassword(ctx context.Context, id string, hash []byte, changedAt time.Time) error

	SetPasswordReset(ctx context.Context, id string, digest string, expires time.Time, now time.Time) error

	// ConsumePasswordReset stores hash for the active account holding the
	// unexpired reset digest, exactly like SetPassword at instant now, and
	// clears the digest in the same write. It returns the account id, or
	// common.ErrorNotFound when no account holds the digest any more, so a
	// digest can be consumed once.
	ConsumePasswordReset(ctx context.Context, digest string, hash []byte, now time.Time) (string, error)

	// RecordLoginFailure increments the failed attempt counter. Once it
	// reaches maxAttempts the account is locked until lockUntil and the
	// counter starts over. A non-positive maxAttempts never locks.
	RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time, now time.Time) error

	// RecordLoginSuccess resets the counter and stores the login instant.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error

	// Delete removes the account permanently.
	Delete(ctx context.Context, id string) error
}
