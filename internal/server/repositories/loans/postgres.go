package loans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// activeLoanConstraint is the partial unique index on (user_id, book_id)
// WHERE NOT returned.
const activeLoanConstraint = "loans_active_uniq"

const loanColumns = `id, user_id, book_id, borrowed_at, due_at, returned, returned_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db    dbx.DBTX
	retry dbx.RetryPolicy
}

func NewPostgresRepository(db dbx.DBTX, retry dbx.RetryPolicy) *PostgresRepository {
	return &PostgresRepository{db: db, retry: retry}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(row scanner) (*models.LoanRecord, error) {
	var (
		l          models.LoanRecord
		returnedAt sql.NullTime
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.BookID, &l.BorrowedAt, &l.DueAt, &l.Returned, &returnedAt); err != nil {
		return nil, err
	}
	if returnedAt.Valid {
		t := returnedAt.Time
		l.ReturnedAt = &t
	}
	return &l, nil
}

func (r *PostgresRepository) Create(ctx context.Context, loan *models.LoanRecord) (*models.LoanRecord, error) {
	query := `INSERT INTO loans (id, user_id, book_id, borrowed_at, due_at, returned)
		 VALUES ($1, $2, $3, $4, $5, FALSE)`

	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, loan.ID, loan.UserID, loan.BookID, loan.BorrowedAt, loan.DueAt)
		return err
	})
	if err != nil {
		if dbx.IsUniqueViolation(err, activeLoanConstraint) {
			return nil, common.ErrAlreadyBorrowed
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	loan.Returned = false
	loan.ReturnedAt = nil
	return loan, nil
}

func (r *PostgresRepository) MarkReturned(ctx context.Context, userID, bookID string, at time.Time) (*models.LoanRecord, error) {
	query := `UPDATE loans SET returned = TRUE, returned_at = $3
		 WHERE user_id = $1 AND book_id = $2 AND NOT returned
		 RETURNING ` + loanColumns

	var loan *models.LoanRecord
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		var err error
		loan, err = scanLoan(r.db.QueryRowContext(ctx, query, userID, bookID, at))
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNoActiveLoan
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return loan, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.LoanRecord, error) {
	var out []*models.LoanRecord
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		out = out[:0]
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			l, err := scanLoan(rows)
			if err != nil {
				return err
			}
			out = append(out, l)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.LoanRecord, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans
		 WHERE user_id = $1 AND NOT returned
		 ORDER BY borrowed_at, id`, userID)
}

func (r *PostgresRepository) ListActiveByBook(ctx context.Context, bookID string) ([]*models.LoanRecord, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans
		 WHERE book_id = $1 AND NOT returned
		 ORDER BY borrowed_at, id`, bookID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.LoanRecord, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans ORDER BY borrowed_at, id`)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	var res sql.Result
	err := dbx.Retry(ctx, r.retry, func(ctx context.Context) error {
		var err error
		res, err = r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("db error: %w", err)
	} else if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
