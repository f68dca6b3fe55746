// Package loans declares the loan ledger contract and its PostgreSQL and
// in-memory implementations.
package loans

import (
	"context"
	"time"

	"github.com/dmitrijs2005/librarian/internal/server/models"
)

// Repository is the durable record of borrow events. Create and MarkReturned
// are conditional writes: the check and the write happen atomically in the
// store, never as a separate read followed by a write.
type Repository interface {
	// Create inserts a new active loan. It fails with common.ErrAlreadyBorrowed
	// when the (user, book) pair already has an active loan.
	Create(ctx context.Context, loan *models.LoanRecord) (*models.LoanRecord, error)

	// MarkReturned closes the active loan of the pair. It fails with
	// common.ErrNoActiveLoan when there is none.
	MarkReturned(ctx context.Context, userID, bookID string, at time.Time) (*models.LoanRecord, error)

	ListActiveByUser(ctx context.Context, userID string) ([]*models.LoanRecord, error)
	ListActiveByBook(ctx context.Context, bookID string) ([]*models.LoanRecord, error)

	// ListAll returns the complete ledger ordered by borrow time.
	ListAll(ctx context.Context) ([]*models.LoanRecord, error)

	// Delete purges a record regardless of its state.
	Delete(ctx context.Context, id string) error
}
