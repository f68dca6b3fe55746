package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. A single mutex makes
// every check-and-write atomic, mirroring the unique index of the
// PostgreSQL schema.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*models.Account)}
}

func clone(a *models.Account) *models.Account {
	c := *a
	c.PasswordHash = append([]byte(nil), a.PasswordHash...)
	return &c
}

func (r *MemoryRepository) emailTakenLocked(email string, scope EmailScope, except string) bool {
	for id, a := range r.accounts {
		if id == except || a.Email != email {
			continue
		}
		if a.Active || scope == EmailScopeGlobal {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(ctx context.Context, a *models.Account, scope EmailScope) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(a.Email, scope, "") {
		return nil, common.ErrDuplicateEmail
	}
	a.Active = true
	a.UpdatedAt = a.CreatedAt
	r.accounts[a.ID] = clone(a)
	return a, nil
}

func (r *MemoryRepository) find(ctx context.Context, match func(*models.Account) bool) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if match(a) {
			return clone(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.find(ctx, func(a *models.Account) bool { return a.ID == id })
}

func (r *MemoryRepository) GetActiveByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.find(ctx, func(a *models.Account) bool { return a.Active && a.Email == email })
}

func resetMatches(a *models.Account, digest string, now time.Time) bool {
	return a.Active && digest != "" && a.PasswordResetDigest == digest &&
		a.PasswordResetExpires != nil && a.PasswordResetExpires.After(now)
}

func (r *MemoryRepository) GetByResetDigest(ctx context.Context, digest string, now time.Time) (*models.Account, error) {
	return r.find(ctx, func(a *models.Account) bool { return resetMatches(a, digest, now) })
}

func (r *MemoryRepository) ListByIDs(ctx context.Context, ids []string) (map[string]*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]*models.Account, len(ids))
	for _, id := range ids {
		if a, ok := r.accounts[id]; ok {
			out[id] = clone(a)
		}
	}
	return out, nil
}

// update applies fn to the stored account under the write lock.
func (r *MemoryRepository) update(ctx context.Context, id string, fn func(*models.Account) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	return fn(a)
}

func (r *MemoryRepository) SetActive(ctx context.Context, id string, active bool, now time.Time) error {
	return r.update(ctx, id, func(a *models.Account) error {
		if a.Active == active {
			return common.ErrAlreadyInState
		}
		if active && r.emailTakenLocked(a.Email, EmailScopeActive, a.ID) {
			return common.ErrDuplicateEmail
		}
		a.Active = active
		if !active {
			a.TokensRevokedAt = &now
		}
		a.UpdatedAt = now
		return nil
	})
}

func (r *MemoryRepository) SetRoles(ctx context.Context, id string, roles models.RoleSet, now time.Time) error {
	return r.update(ctx, id, func(a *models.Account) error {
		a.Roles = roles
		a.UpdatedAt = now
		return nil
	})
}

func setPasswordLocked(a *models.Account, hash []byte, changedAt time.Time) {
	a.PasswordHash = append([]byte(nil), hash...)
	a.PasswordChangedAt = &changedAt
	a.PasswordResetDigest = ""
	a.PasswordResetExpires = nil
	a.LoginAttempts = 0
	a.LockUntil = nil
	a.UpdatedAt = changedAt
}

func (r *MemoryRepository) SetPassword(ctx context.Context, id string, hash []byte, changedAt time.Time) error {
	return r.update(ctx, id, func(a *models.Account) error {
		setPasswordLocked(a, hash, changedAt)
		return nil
	})
}

func (r *MemoryRepository) ConsumePasswordReset(ctx context.Context, digest string, hash []byte, now time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if resetMatches(a, digest, now) {
			setPasswordLocked(a, hash, now)
			return a.ID, nil
		}
	}
	return "", common.ErrorNotFound
}

func (r *MemoryRepository) SetPasswordReset(ctx context.Context, id string, digest string, expires time.Time, now time.Time) error {
	return r.update(ctx, id, func(a *models.Account) error {
		a.PasswordResetDigest = digest
		a.PasswordResetExpires = &expires
		a.UpdatedAt = now
		return nil
	})
}

func (r *MemoryRepository) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time, now time.Time) error {
	return r.update(ctx, id, func(a *models.Account) error {
		a.LoginAttempts++
		if maxAttempts > 0 && a.LoginAttempts >= maxAttempts {
			a.LoginAttempts = 0
			a.LockUntil = &lockUntil
		}
		a.UpdatedAt = now
		return nil
	})
}

func (r *MemoryRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, func(a *models.Account) error {
		a.LoginAttempts = 0
		a.LockUntil = nil
		a.LastLogin = &at
		a.UpdatedAt = at
		return nil
	})
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.accounts, id)
	return nil
}
