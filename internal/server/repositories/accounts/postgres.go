package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// emailActiveConstraint is the partial unique index over active emails.
const emailActiveConstraint = "accounts_email_active_uniq"

const accountColumns = `id, name, email, password_hash, roles, active,
		password_changed_at, tokens_revoked_at, password_reset_digest, password_reset_expires,
		login_attempts, lock_until, last_login, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db    dbx.DBTX
	retry dbx.RetryPolicy
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX, retry dbx.RetryPolicy) *PostgresRepository {
	return &PostgresRepository{db: db, retry: retry}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		a                                                       models.Account
		roles                                                   int16
		changedAt, revokedAt, resetExpires, lockUntil, lastSeen sql.NullTime
		resetDigest                                             sql.NullString
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &roles, &a.Active,
		&changedAt, &revokedAt, &resetDigest, &resetExpires,
		&a.LoginAttempts, &lockUntil, &lastSeen, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Roles = models.RoleSet(roles)
	a.PasswordChangedAt = timePtr(changedAt)
	a.TokensRevokedAt = timePtr(revokedAt)
	a.PasswordResetDigest = resetDigest.String
	a.PasswordResetExpires = timePtr(resetExpires)
	a.LockUntil = timePtr(lockUntil)
	a.LastLogin = timePtr(lastSeen)
	return &a, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account, scope EmailScope) (*models.Account, error) {
	query := `INSERT INTO accounts (id, name, email, password_hash, roles, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)`
	if scope == EmailScopeGlobal {
		query = `INSERT INTO accounts (id, name, email, password_hash, roles, created_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6, $6
		 WHERE NOT EXISTS (SELECT 1 FROM accounts WHERE email = $3)`
	}

	var res sql.Result
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		var err error
		res, err = r.db.ExecContext(ctx, query, a.ID, a.Name, a.Email, a.PasswordHash, int16(a.Roles), a.CreatedAt)
		return err
	})
	if err != nil {
		if dbx.IsUniqueViolation(err, emailActiveConstraint) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, common.ErrDuplicateEmail
	}

	a.Active = true
	a.UpdatedAt = a.CreatedAt
	return a, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Account, error) {
	var account *models.Account
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		var err error
		account, err = scanAccount(r.db.QueryRowContext(ctx, query, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *PostgresRepository) GetActiveByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1 AND active`, email)
}

func (r *PostgresRepository) GetByResetDigest(ctx context.Context, digest string, now time.Time) (*models.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM accounts
		 WHERE password_reset_digest = $1 AND password_reset_expires > $2 AND active`, digest, now)
}

func (r *PostgresRepository) ListByIDs(ctx context.Context, ids []string) (map[string]*models.Account, error) {
	out := make(map[string]*models.Account, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			a, err := scanAccount(rows)
			if err != nil {
				return err
			}
			out[a.ID] = a
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

// exec runs a single-row update and maps zero affected rows to
// common.ErrorNotFound.
func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	var res sql.Result
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		var err error
		res, err = r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool, now time.Time) error {
	err := r.exec(ctx, `UPDATE accounts SET active = $2, updated_at = $3,
		 tokens_revoked_at = CASE WHEN $2 THEN tokens_revoked_at ELSE $3 END
		 WHERE id = $1 AND active <> $2`, id, active, now)
	if err == nil {
		return nil
	}
	if dbx.IsUniqueViolation(err, emailActiveConstraint) {
		return common.ErrDuplicateEmail
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	// Nothing changed: either the row is missing or already in state.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return common.ErrAlreadyInState
}

func (r *PostgresRepository) SetRoles(ctx context.Context, id string, roles models.RoleSet, now time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET roles = $2, updated_at = $3 WHERE id = $1`, id, int16(roles), now)
}

func (r *PostgresRepository) SetPassword(ctx context.Context, id string, hash []byte, changedAt time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET password_hash = $2, password_changed_at = $3,
		 password_reset_digest = NULL, password_reset_expires = NULL,
		 login_attempts = 0, lock_until = NULL, updated_at = $3
		 WHERE id = $1`, id, hash, changedAt)
}

// ConsumePasswordReset rechecks the digest in the UPDATE itself. A
// concurrent reset that committed first leaves no row to match.
func (r *PostgresRepository) ConsumePasswordReset(ctx context.Context, digest string, hash []byte, now time.Time) (string, error) {
	var id string
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, `UPDATE accounts SET password_hash = $2, password_changed_at = $3,
		 password_reset_digest = NULL, password_reset_expires = NULL,
		 login_attempts = 0, lock_until = NULL, updated_at = $3
		 WHERE password_reset_digest = $1 AND password_reset_expires > $3 AND active
		 RETURNING id`, digest, hash, now).Scan(&id)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) SetPasswordReset(ctx context.Context, id string, digest string, expires time.Time, now time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET password_reset_digest = $2, password_reset_expires = $3, updated_at = $4
		 WHERE id = $1`, id, digest, expires, now)
}

func (r *PostgresRepository) RecordLoginFailure(ctx context.Context, id string, maxAttempts int, lockUntil time.Time, now time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET login_attempts = CASE WHEN $2 > 0 AND login_attempts + 1 >= $2 THEN 0 ELSE login_attempts + 1 END,
		 lock_until = CASE WHEN $2 > 0 AND login_attempts + 1 >= $2 THEN $3 ELSE lock_until END,
		 updated_at = $4
		 WHERE id = $1`, id, maxAttempts, lockUntil, now)
}

func (r *PostgresRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = $2
		 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
}
