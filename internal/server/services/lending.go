package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// BorrowInput names the borrower, the book and the due instant of a new loan.
type BorrowInput struct {
	UserID string    `validate:"required,uuid"`
	BookID string    `validate:"required,uuid"`
	DueAt  time.Time `validate:"required"`
}

// LendingService runs the borrow/return state machine. At most one loan per
// (user, book) pair is active at a time; the ledger enforces it with a
// conditional write, so concurrent borrows of the same pair see exactly one
// success.
type LendingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewLendingService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *LendingService {
	return &LendingService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "lending"),
		now:         systemNow,
	}
}

// Borrow opens a loan for the pair. The user must be an active account and
// the book must be catalogued; otherwise common.ErrorNotFound is returned.
// A due instant that is not after the borrow instant is a validation error.
func (s *LendingService) Borrow(ctx context.Context, in BorrowInput) (*models.LoanRecord, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	now := s.now()
	if !in.DueAt.After(now) {
		return nil, fmt.Errorf("%w: due date must be in the future", common.ErrorValidation)
	}

	user, err := s.repomanager.Accounts(s.db).GetByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %s: %w", in.UserID, common.ErrorNotFound)
		}
		return nil, err
	}
	if !user.Active {
		return nil, fmt.Errorf("user %s: %w", in.UserID, common.ErrorNotFound)
	}

	ok, err := s.repomanager.Books(s.db).Exists(ctx, in.BookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("book %s: %w", in.BookID, common.ErrorNotFound)
	}

	loan, err := s.repomanager.Loans(s.db).Create(ctx, &models.LoanRecord{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		BookID:     in.BookID,
		BorrowedAt: now,
		DueAt:      in.DueAt.UTC().Truncate(time.Microsecond),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "book borrowed", "loan_id", loan.ID, "user_id", loan.UserID, "book_id", loan.BookID)
	return loan, nil
}

// Return closes the active loan of the pair, or fails with
// common.ErrNoActiveLoan.
func (s *LendingService) Return(ctx context.Context, userID, bookID string) (*models.LoanRecord, error) {
	if err := checkID("user id", userID); err != nil {
		return nil, err
	}
	if err := checkID("book id", bookID); err != nil {
		return nil, err
	}

	loan, err := s.repomanager.Loans(s.db).MarkReturned(ctx, userID, bookID, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "book returned", "loan_id", loan.ID, "user_id", userID, "book_id", bookID)
	return loan, nil
}

// ListActiveLoansForUser returns the open loans of a user with book titles.
func (s *LendingService) ListActiveLoansForUser(ctx context.Context, userID string) ([]LoanView, error) {
	if err := checkID("user id", userID); err != nil {
		return nil, err
	}
	loans, err := s.repomanager.Loans(s.db).ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

// ListActiveHoldersOfBook returns the open loans of a book with borrower details.
func (s *LendingService) ListActiveHoldersOfBook(ctx context.Context, bookID string) ([]LoanView, error) {
	if err := checkID("book id", bookID); err != nil {
		return nil, err
	}
	loans, err := s.repomanager.Loans(s.db).ListActiveByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

// ListAllHistory returns the whole ledger, oldest first.
func (s *LendingService) ListAllHistory(ctx context.Context) ([]LoanView, error) {
	loans, err := s.repomanager.Loans(s.db).ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, loans)
}

// DeleteRecord purges a loan record regardless of its state.
func (s *LendingService) DeleteRecord(ctx context.Context, loanID string) error {
	if err := checkID("loan id", loanID); err != nil {
		return err
	}
	if err := s.repomanager.Loans(s.db).Delete(ctx, loanID); err != nil {
		return err
	}
	s.logger.Info(ctx, "loan record deleted", "loan_id", loanID)
	return nil
}

func (s *LendingService) views(ctx context.Context, loans []*models.LoanRecord) ([]LoanView, error) {
	d, err := loadDisplay(ctx, s.repomanager, s.db, loans)
	if err != nil {
		return nil, err
	}
	out := make([]LoanView, len(loans))
	for i, l := range loans {
		out[i] = LoanView{LoanRecord: *l, BookTitle: d.titles[l.BookID]}
		if a, ok := d.accounts[l.UserID]; ok {
			out[i].UserName = a.Name
			out[i].UserEmail = a.Email
		}
	}
	return out, nil
}
