package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// BookInput describes a catalogue entry.
type BookInput struct {
	Title  string `validate:"required,max=500"`
	Author string `validate:"max=300"`
}

// BookService maintains the minimal catalogue the ledger refers to.
type BookService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewBookService(db *sql.DB, m repomanager.RepositoryManager) *BookService {
	return &BookService{db: db, repomanager: m, now: systemNow}
}

func (s *BookService) AddBook(ctx context.Context, in BookInput) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	book := &models.Book{ID: uuid.NewString(), Title: in.Title, Author: in.Author, CreatedAt: s.now()}
	if err := s.repomanager.Books(s.db).Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]*models.Book, error) {
	return s.repomanager.Books(s.db).List(ctx)
}
