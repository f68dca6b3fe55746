// Package refreshtokens provides a PostgreSQL-backed repository for managing
// refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements CRUD operations for refresh tokens over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db    dbx.DBTX
	retry dbx.RetryPolicy
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX, retry dbx.RetryPolicy) *PostgresRepository {
	return &PostgresRepository{db: db, retry: retry}
}

// Create inserts a new refresh token digest for userID.
func (r *PostgresRepository) Create(ctx context.Context, userID string, digest string, expires time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, digest, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, uuid.NewString(), userID, digest, expires)
		return err
	})
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// Find returns the refresh token row for the given digest.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, digest string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE digest = $1
	`
	refreshToken := &models.RefreshToken{Digest: digest}
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query, digest).
			Scan(&refreshToken.ID, &refreshToken.UserID, &refreshToken.Expires, &refreshToken.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return refreshToken, nil
}

// Delete removes a refresh token by its digest.
func (r *PostgresRepository) Delete(ctx context.Context, digest string) error {
	var affected int64
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE digest = $1
	`, digest)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByUser removes all refresh tokens of a user.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	return r.exec(ctx, `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
	`, userID)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
