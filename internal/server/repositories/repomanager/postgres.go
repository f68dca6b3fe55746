package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/migrations"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/books"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/loans"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/refreshtokens"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook. Repositories bound to a *sql.DB share
// one retry policy for transient storage failures; repositories bound to a
// *sql.Tx never retry, the caller retries the whole transaction instead.
type PostgresRepositoryManager struct {
	retry dbx.RetryPolicy
}

func (m *PostgresRepositoryManager) policy(db dbx.DBTX) dbx.RetryPolicy {
	if _, ok := db.(*sql.Tx); ok {
		return dbx.RetryPolicy{}
	}
	return m.retry
}

// Accounts returns an accounts.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db, m.policy(db))
}

// Loans returns a loans.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Loans(db dbx.DBTX) loans.Repository {
	return loans.NewPostgresRepository(db, m.policy(db))
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db, m.policy(db))
}

// Books returns a books.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Books(db dbx.DBTX) books.Repository {
	return books.NewPostgresRepository(db, m.policy(db))
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(retry dbx.RetryPolicy) RepositoryManager {
	return &PostgresRepositoryManager{retry: retry}
}
