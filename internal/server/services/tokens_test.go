package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/dbx"
	"github.com/dmitrijs2005/librarian/internal/server/auth"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_RejectsBadTokens(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, pair := e.signUp(t, "ann", "ann@example.com")

	_, err := e.tokens.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	forged, err := auth.GenerateToken(a.ID, a.Roles, []byte("other-secret"), e.clock.Now(), time.Hour)
	require.NoError(t, err)
	_, err = e.tokens.Verify(ctx, forged)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	e.clock.Advance(16 * time.Minute)
	_, err = e.tokens.Verify(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestVerify_UnknownAccountIsRevoked(t *testing.T) {
	e := newEnv(t)

	tok, err := e.tokens.Issue(&models.Account{ID: uuid.NewString(), Roles: models.NewRoleSet(models.RoleAdmin)})
	require.NoError(t, err)

	_, err = e.tokens.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, common.ErrTokenRevoked)
}

func TestVerify_PasswordChangeBoundary(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _ := e.signUp(t, "ann", "ann@example.com")

	issuedBefore, err := e.tokens.Issue(a)
	require.NoError(t, err)

	e.clock.Advance(time.Microsecond)
	changedAt := e.clock.Now()
	hash, err := auth.HashPassword("new-password", 4)
	require.NoError(t, err)
	require.NoError(t, e.rm.Accounts(nil).SetPassword(ctx, a.ID, hash, changedAt))

	issuedAtChange, err := e.tokens.Issue(a)
	require.NoError(t, err)
	e.clock.Advance(time.Microsecond)
	issuedAfter, err := e.tokens.Issue(a)
	require.NoError(t, err)

	_, err = e.tokens.Verify(ctx, issuedBefore)
	assert.ErrorIs(t, err, common.ErrTokenRevoked, "one microsecond before the change")
	_, err = e.tokens.Verify(ctx, issuedAtChange)
	assert.NoError(t, err)
	_, err = e.tokens.Verify(ctx, issuedAfter)
	assert.NoError(t, err)
}

func TestVerify_DeactivationBoundarySurvivesRestore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a, _ := e.signUp(t, "ann", "ann@example.com")

	issuedBefore, err := e.tokens.Issue(a)
	require.NoError(t, err)

	e.clock.Advance(time.Microsecond)
	require.NoError(t, e.accounts.SoftDelete(ctx, a.ID))
	e.clock.Advance(time.Minute)
	require.NoError(t, e.accounts.Restore(ctx, a.ID))

	issuedAfter, err := e.tokens.Issue(a)
	require.NoError(t, err)

	_, err = e.tokens.Verify(ctx, issuedBefore)
	assert.ErrorIs(t, err, common.ErrTokenRevoked, "issued one microsecond before the deactivation")
	_, err = e.tokens.Verify(ctx, issuedAfter)
	assert.NoError(t, err)
}

type flakyAccounts struct {
	accounts.Repository
	err error
}

func (f *flakyAccounts) GetByID(context.Context, string) (*models.Account, error) { return nil, f.err }

type flakyManager struct {
	repomanager.RepositoryManager
	accounts *flakyAccounts
}

func (m *flakyManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }

func TestVerify_PropagatesStoreFailure(t *testing.T) {
	e := newEnv(t)
	_, pair := e.signUp(t, "ann", "ann@example.com")

	e.tokens.repomanager = &flakyManager{RepositoryManager: e.rm, accounts: &flakyAccounts{err: common.ErrTransientStore}}

	_, err := e.tokens.Verify(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrTransientStore)
	assert.False(t, common.IsAuthError(err), "a store outage is not an auth failure")
}
