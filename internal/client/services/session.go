// Package services contains application services for the librarian CLI.
// SessionService keeps the server login and its locally remembered refresh
// token in step.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/librarian/internal/client/client"
	"github.com/dmitrijs2005/librarian/internal/client/models"
	"github.com/dmitrijs2005/librarian/internal/client/repositories/session"
	"github.com/dmitrijs2005/librarian/internal/common"
)

// SessionService defines the login lifecycle for the CLI.
//
// Contract:
//   - Resume: restore a stored session; client.ErrNotLoggedIn if there is none
//     or the server no longer accepts it.
//   - SignUp / Login: authenticate and remember the session.
//   - Logout: revoke on the server and forget locally.
//   - ChangePassword: rotate credentials; the fresh token pair is kept.
type SessionService interface {
	Resume(ctx context.Context) (*models.Session, error)
	SignUp(ctx context.Context, name, email string, password []byte, roles []string) (string, error)
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error
	Current() *models.Session
}

type sessionService struct {
	client  client.Client
	repo    session.Repository
	now     func() time.Time
	current *models.Session
	// token is the latest refresh token seen, with or without a session
	token string
}

// NewSessionService binds c to repo: every refresh token c receives is
// written through to the stored session.
func NewSessionService(c client.Client, repo session.Repository) SessionService {
	s := &sessionService{client: c, repo: repo, now: func() time.Time { return time.Now().UTC() }}
	c.SetTokenListener(s.onToken)
	return s
}

func (s *sessionService) onToken(refreshToken string) {
	s.token = refreshToken
	if s.current != nil {
		s.current.RefreshToken = refreshToken
	}
	// the listener has no caller context; an update failure only costs the
	// next resume
	_ = s.repo.UpdateRefreshToken(context.Background(), refreshToken, s.now())
}

func (s *sessionService) Current() *models.Session {
	return s.current
}

func (s *sessionService) Resume(ctx context.Context) (*models.Session, error) {
	stored, err := s.repo.Load(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, client.ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	s.current = stored
	if err := s.client.Resume(ctx, stored.RefreshToken); err != nil {
		s.current = nil
		if errors.Is(err, client.ErrUnauthorized) {
			if cerr := s.repo.Clear(ctx); cerr != nil {
				return nil, fmt.Errorf("session clear error: %w", cerr)
			}
			return nil, client.ErrNotLoggedIn
		}
		return nil, err
	}
	return s.current, nil
}

func (s *sessionService) SignUp(ctx context.Context, name, email string, password []byte, roles []string) (string, error) {
	id, err := s.client.SignUp(ctx, name, email, password, roles)
	if err != nil {
		return "", err
	}
	if err := s.remember(ctx, email, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *sessionService) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	if err := s.client.Login(ctx, email, password); err != nil {
		return nil, err
	}

	var id string
	if acc, err := s.client.WhoAmI(ctx); err == nil {
		id = acc.ID
	}
	if err := s.remember(ctx, email, id); err != nil {
		return nil, err
	}
	return s.current, nil
}

func (s *sessionService) remember(ctx context.Context, email, accountID string) error {
	sess := &models.Session{Email: email, AccountID: accountID, RefreshToken: s.token, SavedAt: s.now()}
	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("session save error: %w", err)
	}
	s.current = sess
	return nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	err := s.client.Logout(ctx)
	s.current = nil
	if cerr := s.repo.Clear(ctx); cerr != nil {
		return fmt.Errorf("session clear error: %w", cerr)
	}
	return err
}

func (s *sessionService) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) error {
	if !s.client.LoggedIn() {
		return client.ErrNotLoggedIn
	}
	return s.client.ChangePassword(ctx, oldPassword, newPassword)
}
