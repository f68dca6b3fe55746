// Package services contains server-side business logic. AccountService owns
// the credential store operations: registration, login with lockout, token
// pair rotation, password change and reset, soft delete and role management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/auth"
	"github.com/dmitrijs2005/librarian/internal/server/config"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// burnPasswordCheck is a seam for testing auth.BurnPasswordCheck.
var burnPasswordCheck = auth.BurnPasswordCheck

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignUpInput is the profile of a new account.
type SignUpInput struct {
	Name     string   `validate:"required,max=200"`
	Email    string   `validate:"required,email,max=254"`
	Password string   `validate:"required,min=8"`
	Roles    []string `validate:"dive,oneof=user moderator admin"`
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	notifier    Notifier
	logger      logging.Logger

	bcryptCost              int
	emailScope              accounts.EmailScope
	allowRoleSelfAssignment bool
	maxLoginAttempts        int
	lockoutDuration         time.Duration
	resetValidity           time.Duration
	refreshValidity         time.Duration
	retry                   dbx.RetryPolicy

	now func() time.Time
}

// NewAccountService constructs an AccountService using repositories and server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, notifier Notifier, logger logging.Logger, cfg *config.Config) *AccountService {
	scope, ok := accounts.ParseEmailScope(cfg.EmailUniqueness)
	if !ok {
		scope = accounts.EmailScopeActive
	}
	return &AccountService{
		db:                      db,
		repomanager:             m,
		tokens:                  tokens,
		notifier:                notifier,
		logger:                  logger.With("module", "accounts"),
		bcryptCost:              cfg.BcryptCost,
		emailScope:              scope,
		allowRoleSelfAssignment: cfg.AllowRoleSelfAssignment,
		maxLoginAttempts:        cfg.MaxLoginAttempts,
		lockoutDuration:         cfg.LockoutDuration,
		resetValidity:           cfg.PasswordResetValidity,
		refreshValidity:         cfg.RefreshTokenValidityDuration,
		retry:                   cfg.RetryPolicy(),
		now:                     systemNow,
	}
}

// CreateAccount validates the profile, hashes the password and stores a new
// active account. Requested roles are honored only if self-assignment is
// enabled; otherwise anything beyond the default role is rejected.
func (s *AccountService) CreateAccount(ctx context.Context, in SignUpInput) (*models.Account, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	roles, err := s.signUpRoles(in.Roles)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	account := &models.Account{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repomanager.Accounts(s.db).Create(ctx, account, s.emailScope)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *AccountService) signUpRoles(names []string) (models.RoleSet, error) {
	def := models.NewRoleSet(models.DefaultRole)
	if len(names) == 0 {
		return def, nil
	}
	roles, err := models.ParseRoleSet(names)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if roles != def && !s.allowRoleSelfAssignment {
		return 0, fmt.Errorf("%w: roles cannot be chosen at sign-up", common.ErrorValidation)
	}
	return roles, nil
}

// VerifyPassword reports whether raw is the password of account.
func (s *AccountService) VerifyPassword(account *models.Account, raw string) bool {
	return auth.CheckPassword(account.PasswordHash, raw)
}

// FindByEmail returns the active account registered with email.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetActiveByEmail(ctx, normalizeEmail(email))
}

// FindByID returns the account with the given id regardless of its state.
func (s *AccountService) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if err := checkID("account id", id); err != nil {
		return nil, err
	}
	return s.repomanager.Accounts(s.db).GetByID(ctx, id)
}

// SignUp creates an account and logs it in.
func (s *AccountService) SignUp(ctx context.Context, in SignUpInput) (*models.Account, *TokenPair, error) {
	account, err := s.CreateAccount(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.generateTokenPair(ctx, account, s.now(), s.db)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info(ctx, "account created", "account_id", account.ID)
	return account, pair, nil
}

// Login verifies the credentials and returns a new TokenPair. Unknown email,
// wrong password and a locked account all yield common.ErrInvalidCredential.
func (s *AccountService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Accounts(s.db)
	now := s.now()

	account, err := repo.GetActiveByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			burnPasswordCheck(password, s.bcryptCost)
			return nil, common.ErrInvalidCredential
		}
		return nil, err
	}

	if err := s.checkCredential(ctx, account, password, now); err != nil {
		return nil, err
	}

	if err := repo.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		return nil, err
	}
	return s.generateTokenPair(ctx, account, now, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired and
// tokens of inactive accounts ErrTokenRevoked.
func (s *AccountService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	digest := common.DigestHex(refreshToken)
	now := s.now()

	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, digest)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(now) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, digest); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		account, err := s.repomanager.Accounts(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrTokenRevoked
			}
			return err
		}
		if !account.Active {
			return common.ErrTokenRevoked
		}

		pair, err = s.generateTokenPair(ctx, account, now, tx)
		return err
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AccountService) Logout(ctx context.Context, refreshToken string) error {
	err := s.repomanager.RefreshTokens(s.db).Delete(ctx, common.DigestHex(refreshToken))
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return nil
}

// ChangePassword replaces the password of the identity's account after
// checking the old one. Every token issued before the change stops
// verifying; the returned pair is issued at the change instant and stays valid.
//
// A wrong old password counts toward the lockout like a failed login and
// yields common.ErrWrongPassword, a validation error: the caller's token is
// fine, only the input is not.
func (s *AccountService) ChangePassword(ctx context.Context, identity models.Identity, oldPassword, newPassword string) (*TokenPair, error) {
	if err := s.checkNewPassword(newPassword); err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, identity.AccountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.checkCredential(ctx, account, oldPassword, now); err != nil {
		if errors.Is(err, common.ErrInvalidCredential) {
			return nil, common.ErrWrongPassword
		}
		return nil, err
	}

	var pair *TokenPair
	if err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.setPassword(ctx, tx, account.ID, newPassword, now); err != nil {
			return err
		}
		pair, err = s.generateTokenPair(ctx, account, now, tx)
		return err
	}); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "password changed", "account_id", account.ID)
	return pair, nil
}

// RequestPasswordReset stores the digest of a fresh reset token and hands the
// raw token to the notifier. An unknown email succeeds without doing
// anything, so the call does not reveal which emails are registered.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetActiveByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return common.ErrorInternal
	}
	now := s.now()
	if err := repo.SetPasswordReset(ctx, account.ID, common.DigestHex(token), now.Add(s.resetValidity), now); err != nil {
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, account.Email, token); err != nil {
		return fmt.Errorf("error sending password reset: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the holder of an unexpired reset
// token. An unknown, expired or already used token yields
// common.ErrInvalidToken; of concurrent resets with one token exactly one
// succeeds.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := s.checkNewPassword(newPassword); err != nil {
		return err
	}

	digest := common.DigestHex(token)
	now := s.now()
	if _, err := s.repomanager.Accounts(s.db).GetByResetDigest(ctx, digest, now); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	var accountID string
	if err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		id, err := s.repomanager.Accounts(tx).ConsumePasswordReset(ctx, digest, hash, now)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrInvalidToken
			}
			return err
		}
		accountID = id
		return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, id)
	}); err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "account_id", accountID)
	return nil
}

// SoftDelete deactivates an account and revokes its refresh tokens. Access
// tokens issued before the deactivation stay revoked after a restore.
func (s *AccountService) SoftDelete(ctx context.Context, accountID string) error {
	if err := checkID("account id", accountID); err != nil {
		return err
	}
	now := s.now()
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Accounts(tx).SetActive(ctx, accountID, false, now); err != nil {
			return err
		}
		return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, accountID)
	})
}

// Restore reactivates a soft-deleted account.
func (s *AccountService) Restore(ctx context.Context, accountID string) error {
	if err := checkID("account id", accountID); err != nil {
		return err
	}
	return s.repomanager.Accounts(s.db).SetActive(ctx, accountID, true, s.now())
}

// Delete removes an account permanently together with its refresh tokens.
// Loan records keep the opaque user reference.
func (s *AccountService) Delete(ctx context.Context, accountID string) error {
	if err := checkID("account id", accountID); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, accountID); err != nil {
			return err
		}
		return s.repomanager.Accounts(tx).Delete(ctx, accountID)
	})
}

func (s *AccountService) GetRoles(ctx context.Context, accountID string) (models.RoleSet, error) {
	account, err := s.FindByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Roles, nil
}

// SetRoles replaces the roles of an account. Existing access tokens pick up
// the change on their next verification.
func (s *AccountService) SetRoles(ctx context.Context, accountID string, names []string) (models.RoleSet, error) {
	if err := checkID("account id", accountID); err != nil {
		return 0, err
	}
	roles, err := models.ParseRoleSet(names)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}
	if roles.IsEmpty() {
		return 0, fmt.Errorf("%w: at least one role is required", common.ErrorValidation)
	}
	if err := s.repomanager.Accounts(s.db).SetRoles(ctx, accountID, roles, s.now()); err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "roles changed", "account_id", accountID, "roles", roles.String())
	return roles, nil
}

// --- helpers below ---

// inTx runs fn in one transaction, re-running it on transient failures.
func (s *AccountService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.RetryTx(ctx, s.db, s.retry, nil, fn)
}

// checkCredential verifies password against account and applies the
// lockout. A locked account burns the same bcrypt work as a real check, so
// the lockout does not show in response time. Every failure is
// common.ErrInvalidCredential.
func (s *AccountService) checkCredential(ctx context.Context, account *models.Account, password string, now time.Time) error {
	if account.Locked(now) {
		burnPasswordCheck(password, s.bcryptCost)
		s.logger.Debug(ctx, "credential rejected", "account_id", account.ID, "reason", "locked")
		return common.ErrInvalidCredential
	}

	if !s.VerifyPassword(account, password) {
		lockUntil := now.Add(s.lockoutDuration)
		if err := s.repomanager.Accounts(s.db).RecordLoginFailure(ctx, account.ID, s.maxLoginAttempts, lockUntil, now); err != nil {
			return err
		}
		s.logger.Debug(ctx, "credential rejected", "account_id", account.ID, "reason", "password")
		return common.ErrInvalidCredential
	}
	return nil
}

func (s *AccountService) checkNewPassword(p string) error {
	if len(p) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", common.ErrorValidation)
	}
	return checkPassword(p)
}

// setPassword stores the new hash and drops every refresh token of the account.
func (s *AccountService) setPassword(ctx context.Context, tx dbx.DBTX, accountID, password string, at time.Time) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.repomanager.Accounts(tx).SetPassword(ctx, accountID, hash, at); err != nil {
		return err
	}
	return s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, accountID)
}

func (s *AccountService) generateTokenPair(ctx context.Context, account *models.Account, at time.Time, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.tokens.issueAt(account, at)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(tx).Create(ctx, account.ID, common.DigestHex(refresh), at.Add(s.refreshValidity)); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
