// Package server initializes and runs the librarian server.
// It selects the storage backend, wires the application services and runs
// the gRPC endpoint until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/config"
	"github.com/dmitrijs2005/librarian/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/librarian/internal/server/services"

	gs "github.com/dmitrijs2005/librarian/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	services gs.Services
}

// openDB is replaced in tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

// NewApp builds the application. With an empty database DSN every
// repository lives in memory; otherwise Postgres is opened and migrated.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)

	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, using in-memory storage")
		rm = repomanager.NewMemoryRepositoryManager()
	} else {
		var err error
		db, err = openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db open error: %w", err)
		}

		rm = repomanager.NewPostgresRepositoryManager(c.RetryPolicy())

		mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := rm.RunMigrations(mctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
	}

	tokens := services.NewTokenService(db, rm, c)
	svc := gs.Services{
		Accounts:  services.NewAccountService(db, rm, tokens, services.NewLogNotifier(logger), logger, c),
		Tokens:    tokens,
		Lending:   services.NewLendingService(db, rm, logger),
		Analytics: services.NewAnalyticsService(db, rm, c.AnalyticsTopN),
		Books:     services.NewBookService(db, rm),
	}

	return &App{config: c, logger: logger, db: db, services: svc}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err.Error())
		}
	}
	app.logger.Info(ctx, "App stopped")
}
