package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/librarian/internal/client/models"
	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (*models.Session, error) {
	var s models.Session
	err := r.db.QueryRowContext(ctx,
		`SELECT email, account_id, refresh_token, saved_at FROM session WHERE id = 1`,
	).Scan(&s.Email, &s.AccountID, &s.RefreshToken, &s.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &s, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, s *models.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session (id, email, account_id, refresh_token, saved_at) VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			account_id = excluded.account_id,
			refresh_token = excluded.refresh_token,
			saved_at = excluded.saved_at
	`, s.Email, s.AccountID, s.RefreshToken, s.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateRefreshToken(ctx context.Context, token string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE session SET refresh_token = ?, saved_at = ? WHERE id = 1`, token, at.UTC())
	if err != nil {
		return fmt.Errorf("failed to update session token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM session`)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
