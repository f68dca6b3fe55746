package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/auth"
	"github.com/dmitrijs2005/librarian/internal/server/config"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
)

// TokenService mints access tokens and turns a presented token back into
// the identity of a live account.
type TokenService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	secret         []byte
	accessValidity time.Duration
	now            func() time.Time
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:             db,
		repomanager:    m,
		secret:         []byte(cfg.SecretKey),
		accessValidity: cfg.AccessTokenValidityDuration,
		now:            systemNow,
	}
}

// Issue signs an access token for account as of the current instant.
func (s *TokenService) Issue(account *models.Account) (string, error) {
	return s.issueAt(account, s.now())
}

func (s *TokenService) issueAt(account *models.Account, at time.Time) (string, error) {
	return auth.GenerateToken(account.ID, account.Roles, s.secret, at, s.accessValidity)
}

// Verify checks token and returns the identity it stands for. The checks run
// in order: signature and expiry, then the account must still exist and be
// active, then neither a password change nor a deactivation may have
// happened after the token was issued. The returned roles are the
// account's current roles, not the ones recorded in the token.
//
// Failures are common.ErrInvalidToken, common.ErrTokenExpired or
// common.ErrTokenRevoked; store failures are returned as is.
func (s *TokenService) Verify(ctx context.Context, token string) (models.Identity, error) {
	claims, err := auth.ParseToken(token, s.secret, s.now())
	if err != nil {
		return models.Identity{}, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return models.Identity{}, common.ErrTokenRevoked
		}
		return models.Identity{}, err
	}
	if !account.Active {
		return models.Identity{}, common.ErrTokenRevoked
	}

	issuedAt := claims.IssuedAtTime()
	if revokedAfter(account.PasswordChangedAt, issuedAt) || revokedAfter(account.TokensRevokedAt, issuedAt) {
		return models.Identity{}, common.ErrTokenRevoked
	}

	return models.Identity{AccountID: account.ID, Roles: account.Roles}, nil
}

func revokedAfter(at *time.Time, issuedAt time.Time) bool {
	return at != nil && at.After(issuedAt)
}
