package accounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/librarian/internal/common"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(id, email string) *models.Account {
	return &models.Account{ID: id, Name: id, Email: email, PasswordHash: []byte("h"),
		Roles: models.NewRoleSet(models.RoleUser), CreatedAt: time.Now()}
}

func TestMemory_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	got, err := r.GetActiveByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_DuplicateEmail_ActiveScope(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	_, err = r.Create(ctx, newAccount("a2", "a@x.io"), EmailScopeActive)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	require.NoError(t, r.SetActive(ctx, "a1", false, time.Now()))

	_, err = r.Create(ctx, newAccount("a2", "a@x.io"), EmailScopeActive)
	require.NoError(t, err, "soft-deleted email may be reused")

	err = r.SetActive(ctx, "a1", true, time.Now())
	assert.ErrorIs(t, err, common.ErrDuplicateEmail, "restore must not create a second active owner")
}

func TestMemory_DuplicateEmail_GlobalScope(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeGlobal)
	require.NoError(t, err)
	require.NoError(t, r.SetActive(ctx, "a1", false, time.Now()))

	_, err = r.Create(ctx, newAccount("a2", "a@x.io"), EmailScopeGlobal)
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestMemory_SetActive_States(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	assert.ErrorIs(t, r.SetActive(ctx, "a1", true, time.Now()), common.ErrAlreadyInState)
	require.NoError(t, r.SetActive(ctx, "a1", false, time.Now()))
	assert.ErrorIs(t, r.SetActive(ctx, "a1", false, time.Now()), common.ErrAlreadyInState)
	assert.ErrorIs(t, r.SetActive(ctx, "nope", false, time.Now()), common.ErrorNotFound)

	_, err = r.GetActiveByEmail(ctx, "a@x.io")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_ConcurrentCreate_OneWinner(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.Create(ctx, newAccount(string(rune('a'+i)), "same@x.io"), EmailScopeActive)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, common.ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestMemory_LoginFailureLocksAfterMax(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	now := time.Now()
	until := now.Add(time.Minute)
	for i := 0; i < 2; i++ {
		require.NoError(t, r.RecordLoginFailure(ctx, "a1", 3, until, now))
	}
	a, _ := r.GetByID(ctx, "a1")
	assert.False(t, a.Locked(now))
	assert.Equal(t, 2, a.LoginAttempts)

	require.NoError(t, r.RecordLoginFailure(ctx, "a1", 3, until, now))
	a, _ = r.GetByID(ctx, "a1")
	assert.True(t, a.Locked(now))
	assert.Equal(t, 0, a.LoginAttempts)

	require.NoError(t, r.RecordLoginSuccess(ctx, "a1", now))
	a, _ = r.GetByID(ctx, "a1")
	assert.False(t, a.Locked(now))
	require.NotNil(t, a.LastLogin)
}

func TestMemory_PasswordReset(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, r.SetPasswordReset(ctx, "a1", "digest", now.Add(time.Hour), now))

	got, err := r.GetByResetDigest(ctx, "digest", now)
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = r.GetByResetDigest(ctx, "digest", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, common.ErrorNotFound, "expired digest must not match")

	require.NoError(t, r.SetPassword(ctx, "a1", []byte("new"), now))
	_, err = r.GetByResetDigest(ctx, "digest", now)
	assert.ErrorIs(t, err, common.ErrorNotFound, "password change clears reset")
}

func TestMemory_ConsumePasswordResetOnce(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, r.SetPasswordReset(ctx, "a1", "digest", now.Add(time.Hour), now))

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		start = make(chan struct{})
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if id, err := r.ConsumePasswordReset(ctx, "digest", []byte("new"), now); err == nil {
				assert.Equal(t, "a1", id)
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, common.ErrorNotFound)
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, 1, wins)

	a, err := r.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), a.PasswordHash)
	assert.Empty(t, a.PasswordResetDigest)
	require.NotNil(t, a.PasswordChangedAt)
}

func TestMemory_ConsumePasswordResetRejectsExpired(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, r.SetPasswordReset(ctx, "a1", "digest", now.Add(time.Minute), now))

	_, err = r.ConsumePasswordReset(ctx, "digest", []byte("new"), now.Add(time.Hour))
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.ConsumePasswordReset(ctx, "", []byte("new"), now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_DeactivationRecordsRevocation(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	at := time.Now()
	require.NoError(t, r.SetActive(ctx, "a1", false, at))
	require.NoError(t, r.SetActive(ctx, "a1", true, at.Add(time.Minute)))

	a, err := r.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, a.TokensRevokedAt)
	assert.True(t, a.TokensRevokedAt.Equal(at), "restore keeps the deactivation instant")
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	a, _ := r.GetByID(ctx, "a1")
	a.Active = false

	b, _ := r.GetByID(ctx, "a1")
	assert.True(t, b.Active)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_, err := r.Create(ctx, newAccount("a1", "a@x.io"), EmailScopeActive)
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, "a1"))
	assert.ErrorIs(t, r.Delete(ctx, "a1"), common.ErrorNotFound)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRepository().GetByID(ctx, "a1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseEmailScope(t *testing.T) {
	s, ok := ParseEmailScope("global")
	assert.True(t, ok)
	assert.Equal(t, EmailScopeGlobal, s)

	s, ok = ParseEmailScope("")
	assert.True(t, ok)
	assert.Equal(t, EmailScopeActive, s)

	_, ok = ParseEmailScope("inactive")
	assert.False(t, ok)
}
