// Package books declares the catalogue repository. The lending ledger only
// needs to know whether a book exists and how to display it.
package books

import (
	"context"

	"github.com/dmitrijs2005/librarian/internal/server/models"
)

type Repository interface {
	// Create stores a new book. The caller assigns ID and CreatedAt.
	Create(ctx context.Context, book *models.Book) error

	// Exists reports whether a book with the given id is catalogued.
	Exists(ctx context.Context, id string) (bool, error)

	// Titles returns id -> title for the catalogued subset of ids.
	Titles(ctx context.Context, ids []string) (map[string]string, error)

	// List returns all books ordered by title, then id.
	List(ctx context.Context) ([]*models.Book, error)
}
