package books

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/models"
)

type PostgresRepository struct {
	db    dbx.DBTX
	retry dbx.RetryPolicy
}

func NewPostgresRepository(db dbx.DBTX, retry dbx.RetryPolicy) *PostgresRepository {
	return &PostgresRepository{db: db, retry: retry}
}

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) error {
	query := `INSERT INTO books (id, title, author, created_at) VALUES ($1, $2, $3, $4)`
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, book.ID, book.Title, book.Author, book.CreatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Titles(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `SELECT id, title FROM books WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var id, title string
			if err := rows.Scan(&id, &title); err != nil {
				return err
			}
			out[id] = title
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Book, error) {
	var out []*models.Book
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		out = out[:0]
		rows, err := r.db.QueryContext(ctx, `SELECT id, title, author, created_at FROM books ORDER BY title, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			b := &models.Book{}
			if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CreatedAt); err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
