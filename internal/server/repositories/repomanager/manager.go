// Package repomanager vends repositories bound to a database handle or a
// transaction, so services can run several repository calls atomically.
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

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Loans(db dbx.DBTX) loans.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Books(db dbx.DBTX) books.Repository
}
