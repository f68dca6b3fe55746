package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/config"
	"github.com/dmitrijs2005/librarian/internal/server/models"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeClock is a settable clock shared by all services under test.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type captureNotifier struct {
	mu     sync.Mutex
	emails []string
	tokens []string
}

func (n *captureNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, email)
	n.tokens = append(n.tokens, token)
	return nil
}

func (n *captureNotifier) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.tokens) == 0 {
		return ""
	}
	return n.tokens[len(n.tokens)-1]
}

type env struct {
	clock    *fakeClock
	rm       repomanager.RepositoryManager
	tokens   *TokenService
	accounts *AccountService
	lending  *LendingService
	analytic *AnalyticsService
	books    *BookService
	notifier *captureNotifier
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.MaxLoginAttempts = 3
	cfg.LockoutDuration = 10 * time.Minute
	return cfg
}

// newEnv wires every service over shared in-memory repositories.
func newEnv(t *testing.T, mutate ...func(*config.Config)) *env {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	clock := &fakeClock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	rm := repomanager.NewMemoryRepositoryManager()
	n := &captureNotifier{}

	e := &env{clock: clock, rm: rm, notifier: n}
	e.tokens = NewTokenService(nil, rm, cfg)
	e.tokens.now = clock.Now
	e.accounts = NewAccountService(nil, rm, e.tokens, n, logging.Nop(), cfg)
	e.accounts.now = clock.Now
	e.lending = NewLendingService(nil, rm, logging.Nop())
	e.lending.now = clock.Now
	e.analytic = NewAnalyticsService(nil, rm, cfg.AnalyticsTopN)
	e.analytic.now = clock.Now
	e.books = NewBookService(nil, rm)
	e.books.now = clock.Now
	return e
}

func (e *env) signUp(t *testing.T, name, email string) (*models.Account, *TokenPair) {
	t.Helper()
	a, pair, err := e.accounts.SignUp(context.Background(), SignUpInput{Name: name, Email: email, Password: "password-" + name})
	require.NoError(t, err)
	return a, pair
}

func (e *env) addBook(t *testing.T, title string) *models.Book {
	t.Helper()
	b, err := e.books.AddBook(context.Background(), BookInput{Title: title})
	require.NoError(t, err)
	return b
}
