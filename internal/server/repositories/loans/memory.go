package loans

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/models"
)

type pair struct{ userID, bookID string }

// MemoryRepository keeps the ledger in process memory. The active index
// plays the role of the partial unique index of the PostgreSQL schema.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]*models.LoanRecord
	active  map[pair]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]*models.LoanRecord),
		active:  make(map[pair]string),
	}
}

func clone(l *models.LoanRecord) *models.LoanRecord {
	c := *l
	if l.ReturnedAt != nil {
		t := *l.ReturnedAt
		c.ReturnedAt = &t
	}
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, loan *models.LoanRecord) (*models.LoanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pair{loan.UserID, loan.BookID}
	if _, ok := r.active[key]; ok {
		return nil, common.ErrAlreadyBorrowed
	}
	loan.Returned = false
	loan.ReturnedAt = nil
	r.records[loan.ID] = clone(loan)
	r.active[key] = loan.ID
	return loan, nil
}

func (r *MemoryRepository) MarkReturned(ctx context.Context, userID, bookID string, at time.Time) (*models.LoanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pair{userID, bookID}
	id, ok := r.active[key]
	if !ok {
		return nil, common.ErrNoActiveLoan
	}
	l := r.records[id]
	l.Returned = true
	l.ReturnedAt = &at
	delete(r.active, key)
	return clone(l), nil
}

func (r *MemoryRepository) filter(ctx context.Context, keep func(*models.LoanRecord) bool) ([]*models.LoanRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.LoanRecord, 0, len(r.records))
	for _, l := range r.records {
		if keep(l) {
			out = append(out, clone(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BorrowedAt.Equal(out[j].BorrowedAt) {
			return out[i].BorrowedAt.Before(out[j].BorrowedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.LoanRecord, error) {
	return r.filter(ctx, func(l *models.LoanRecord) bool { return !l.Returned && l.UserID == userID })
}

func (r *MemoryRepository) ListActiveByBook(ctx context.Context, bookID string) ([]*models.LoanRecord, error) {
	return r.filter(ctx, func(l *models.LoanRecord) bool { return !l.Returned && l.BookID == bookID })
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*models.LoanRecord, error) {
	return r.filter(ctx, func(*models.LoanRecord) bool { return true })
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.records[id]
	if !ok {
		return common.ErrorNotFound
	}
	key := pair{l.UserID, l.BookID}
	if r.active[key] == id {
		delete(r.active, key)
	}
	delete(r.records, id)
	return nil
}
