package books

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/librarian/internal/server/models"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	books map[string]models.Book
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[string]models.Book)}
}

func (r *MemoryRepository) Create(ctx context.Context, book *models.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.books[book.ID] = *book
	return nil
}

func (r *MemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.books[id]
	return ok, nil
}

func (r *MemoryRepository) Titles(ctx context.Context, ids []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if b, ok := r.books[id]; ok {
			out[id] = b.Title
		}
	}
	return out, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]*models.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Book, 0, len(r.books))
	for _, b := range r.books {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
