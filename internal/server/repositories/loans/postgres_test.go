package loans

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "user_id", "book_id", "borrowed_at", "due_at", "returned", "returned_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db, dbx.RetryPolicy{}), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	due := now.Add(24 * time.Hour)

	mock.ExpectExec(`^INSERT INTO loans \(id, user_id, book_id, borrowed_at, due_at, returned\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, FALSE\)$`).
		WithArgs("l1", "u1", "b1", now, due).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), &models.LoanRecord{ID: "l1", UserID: "u1", BookID: "b1", BorrowedAt: now, DueAt: due})
	require.NoError(t, err)
	assert.False(t, got.Returned)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ActiveLoanExists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO loans`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: activeLoanConstraint})

	_, err := repo.Create(context.Background(), &models.LoanRecord{ID: "l2", UserID: "u1", BookID: "b1"})
	assert.ErrorIs(t, err, common.ErrAlreadyBorrowed)
}

func TestCreate_OtherUniqueViolationIsNotAlreadyBorrowed(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^INSERT INTO loans`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "loans_pkey"})

	_, err := repo.Create(context.Background(), &models.LoanRecord{ID: "l2"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrAlreadyBorrowed)
}

func TestMarkReturned_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)^UPDATE loans SET returned = TRUE, returned_at = \$3\s+WHERE user_id = \$1 AND book_id = \$2 AND NOT returned\s+RETURNING id`).
		WithArgs("u1", "b1", now).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("l1", "u1", "b1", now.Add(-time.Hour), now.Add(time.Hour), true, now))

	got, err := repo.MarkReturned(context.Background(), "u1", "b1", now)
	require.NoError(t, err)
	assert.True(t, got.Returned)
	require.NotNil(t, got.ReturnedAt)
}

func TestMarkReturned_NoActiveLoan(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^UPDATE loans SET returned`).WillReturnError(sql.ErrNoRows)

	_, err := repo.MarkReturned(context.Background(), "u1", "b1", time.Now())
	assert.ErrorIs(t, err, common.ErrNoActiveLoan)
}

func TestListActiveByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM loans\s+WHERE user_id = \$1 AND NOT returned\s+ORDER BY borrowed_at, id$`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("l1", "u1", "b1", now, now, false, nil).
			AddRow("l2", "u1", "b2", now, now, false, nil))

	got, err := repo.ListActiveByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].ReturnedAt)
}

func TestListAll_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM loans ORDER BY borrowed_at, id$`).WillReturnError(errors.New("db err"))

	_, err := repo.ListAll(context.Background())
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM loans WHERE id = \$1$`).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE FROM loans WHERE id = \$1$`).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "l1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "l1"), common.ErrorNotFound)
}
