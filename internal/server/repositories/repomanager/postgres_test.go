package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/books"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/loans"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/refreshtokens"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(dbx.DefaultRetryPolicy)

	if _, ok := m.Accounts(db).(*accounts.PostgresRepository); !ok {
		t.Fatal("Accounts() is not a postgres repository")
	}
	if _, ok := m.Loans(db).(*loans.PostgresRepository); !ok {
		t.Fatal("Loans() is not a postgres repository")
	}
	if _, ok := m.RefreshTokens(db).(*refreshtokens.PostgresRepository); !ok {
		t.Fatal("RefreshTokens() is not a postgres repository")
	}
	if _, ok := m.Books(db).(*books.PostgresRepository); !ok {
		t.Fatal("Books() is not a postgres repository")
	}
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(dbx.RetryPolicy{})
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager(dbx.RetryPolicy{})
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

var fastRetry = dbx.RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestTxRepositories_DoNotRetryStatements(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(fastRetry)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET active").WillReturnError(&pgconn.PgError{Code: "40P01"})
	mock.ExpectRollback()

	err := dbx.WithTx(context.Background(), db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return m.Accounts(tx).SetActive(ctx, "a1", false, time.Now())
	})
	if !errors.Is(err, common.ErrTransientStore) {
		t.Fatalf("expected transient store error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statement must not be re-issued inside the transaction: %v", err)
	}
}

func TestRetryTx_RerunsWholeTransactionAfterDeadlock(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(fastRetry)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET active").WillReturnError(&pgconn.PgError{Code: "40P01"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts SET active").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM refresh_tokens").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := dbx.RetryTx(context.Background(), db, fastRetry, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := m.Accounts(tx).SetActive(ctx, "a1", false, time.Now()); err != nil {
			return err
		}
		return m.RefreshTokens(tx).DeleteByUser(ctx, "a1")
	})
	if err != nil {
		t.Fatalf("RetryTx error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRetryTx_ExhaustedBudgetIsTransient(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager(fastRetry)
	policy := dbx.RetryPolicy{Attempts: 1, BaseDelay: time.Millisecond}

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE accounts SET active").WillReturnError(&pgconn.PgError{Code: "40001"})
		mock.ExpectRollback()
	}

	err := dbx.RetryTx(context.Background(), db, policy, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return m.Accounts(tx).SetActive(ctx, "a1", false, time.Now())
	})
	if !errors.Is(err, common.ErrTransientStore) {
		t.Fatalf("expected transient store error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
