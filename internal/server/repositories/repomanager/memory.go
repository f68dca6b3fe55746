package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/books"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/loans"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/refreshtokens"
)

// MemoryRepositoryManager hands out the same in-memory repositories for any
// handle; the DBTX argument is ignored.
type MemoryRepositoryManager struct {
	accounts      *accounts.MemoryRepository
	loans         *loans.MemoryRepository
	refreshTokens *refreshtokens.MemoryRepository
	books         *books.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{
		accounts:      accounts.NewMemoryRepository(),
		loans:         loans.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
		books:         books.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) Loans(dbx.DBTX) loans.Repository { return m.loans }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return m.refreshTokens
}

func (m *MemoryRepositoryManager) Books(dbx.DBTX) books.Repository { return m.books }
