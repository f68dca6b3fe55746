// Package session persists the CLI login between runs. The store holds at
// most one session.
package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/librarian/internal/client/models"
)

type Repository interface {
	// Load returns common.ErrorNotFound when no session is stored.
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	// UpdateRefreshToken replaces the token of the stored session, if any.
	UpdateRefreshToken(ctx context.Context, token string, at time.Time) error
	Clear(ctx context.Context) error
}
