package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/librarian/internal/client/client"
	"github.com/dmitrijs2005/librarian/internal/client/config"
	"github.com/dmitrijs2005/librarian/internal/client/repositories/session"
	"github.com/dmitrijs2005/librarian/internal/client/services"
	"github.com/dmitrijs2005/librarian/internal/filex"
)

type App struct {
	config   *config.Config
	client   client.Client
	sessions services.SessionService
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if _, err := filex.EnsureParentDir(c.SessionDB); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewLibraryClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ss := services.NewSessionService(apiClient, session.NewSQLiteRepository(db))

	return &App{
		config:   c,
		client:   apiClient,
		sessions: ss,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if s := a.sessions.Current(); s != nil && a.isLoggedIn() {
		return s.Email
	}
	return "guest"
}

// resume restores the stored login, if any. A missing or rejected session
// is not an error.
func (a *App) resume(ctx context.Context) {
	s, err := a.sessions.Resume(ctx)
	switch {
	case err == nil:
		log.Printf("Resumed session for %s", s.Email)
	case errors.Is(err, client.ErrNotLoggedIn):
	case errors.Is(err, client.ErrUnavailable):
		log.Printf("Server unavailable, session not resumed")
	default:
		log.Printf("Session not resumed: %s", err.Error())
	}
}

// Run blocks in the REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	log.Println("Welcome to librarian CLI (type 'help' for commands)")
	a.resume(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}
