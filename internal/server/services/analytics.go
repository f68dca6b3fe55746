package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/librarian/internal/server/analytics"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
)

// RankedBook is one entry of the most-borrowed list.
type RankedBook struct {
	BookID string
	Title  string
	Count  int
}

// RankedBorrower is one entry of the most-active borrowers list.
type RankedBorrower struct {
	UserID string
	Name   string
	Email  string
	Count  int
}

// Dashboard is the analytics summary with display data attached.
type Dashboard struct {
	TotalLoans    int
	TotalReturned int
	TotalActive   int
	TotalOverdue  int
	TopBooks      []RankedBook
	TopBorrowers  []RankedBorrower
}

type AnalyticsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	topN        int
	now         func() time.Time
}

func NewAnalyticsService(db *sql.DB, m repomanager.RepositoryManager, topN int) *AnalyticsService {
	return &AnalyticsService{db: db, repomanager: m, topN: topN, now: systemNow}
}

// Summary folds the current ledger. The display join runs after counting
// and ranking, so titles and names never influence either.
func (s *AnalyticsService) Summary(ctx context.Context) (*Dashboard, error) {
	records, err := s.repomanager.Loans(s.db).ListAll(ctx)
	if err != nil {
		return nil, err
	}
	sum := analytics.Summarize(records, s.now(), s.topN)

	bookIDs := make([]string, len(sum.TopBooks))
	for i, c := range sum.TopBooks {
		bookIDs[i] = c.ID
	}
	userIDs := make([]string, len(sum.TopBorrowers))
	for i, c := range sum.TopBorrowers {
		userIDs[i] = c.ID
	}
	d, err := loadDisplayIDs(ctx, s.repomanager, s.db, bookIDs, userIDs)
	if err != nil {
		return nil, err
	}

	out := &Dashboard{
		TotalLoans:    sum.TotalLoans,
		TotalReturned: sum.TotalReturned,
		TotalActive:   sum.TotalActive,
		TotalOverdue:  sum.TotalOverdue,
		TopBooks:      make([]RankedBook, len(sum.TopBooks)),
		TopBorrowers:  make([]RankedBorrower, len(sum.TopBorrowers)),
	}
	for i, c := range sum.TopBooks {
		out.TopBooks[i] = RankedBook{BookID: c.ID, Title: d.titles[c.ID], Count: c.Count}
	}
	for i, c := range sum.TopBorrowers {
		out.TopBorrowers[i] = RankedBorrower{UserID: c.ID, Count: c.Count}
		if a, ok := d.accounts[c.ID]; ok {
			out.TopBorrowers[i].Name = a.Name
			out.TopBorrowers[i].Email = a.Email
		}
	}
	return out, nil
}
