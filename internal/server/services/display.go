package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
)

// LoanView is a loan record joined with display data of its book and
// borrower. The join fields are empty when the referenced book or account
// no longer exists.
type LoanView struct {
	models.LoanRecord
	BookTitle string
	UserName  string
	UserEmail string
}

type display struct {
	titles   map[string]string
	accounts map[string]*models.Account
}

// loadDisplay fetches titles and accounts referenced by loans in two batched reads.
func loadDisplay(ctx context.Context, m repomanager.RepositoryManager, db *sql.DB, loans []*models.LoanRecord) (*display, error) {
	bookIDs := make([]string, 0, len(loans))
	userIDs := make([]string, 0, len(loans))
	seenBooks := make(map[string]struct{}, len(loans))
	seenUsers := make(map[string]struct{}, len(loans))
	for _, l := range loans {
		if _, ok := seenBooks[l.BookID]; !ok {
			seenBooks[l.BookID] = struct{}{}
			bookIDs = append(bookIDs, l.BookID)
		}
		if _, ok := seenUsers[l.UserID]; !ok {
			seenUsers[l.UserID] = struct{}{}
			userIDs = append(userIDs, l.UserID)
		}
	}
	return loadDisplayIDs(ctx, m, db, bookIDs, userIDs)
}

func loadDisplayIDs(ctx context.Context, m repomanager.RepositoryManager, db *sql.DB, bookIDs, userIDs []string) (*display, error) {
	titles, err := m.Books(db).Titles(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	accounts, err := m.Accounts(db).ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	return &display{titles: titles, accounts: accounts}, nil
}
