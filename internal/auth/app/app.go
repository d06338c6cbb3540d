package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/passgate/internal/auth/http"
	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
	"github.com/common-nighthawk/go-figure"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db   store.Store
	keys *Keys
	pool *secctx.Pool

	// Services
	accountService      *service.AccountService
	clientService       *service.ClientService
	tokenService        *service.TokenService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// Any configuration or key problem is returned and the process must not
// start.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "passgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Pepper for password hashing; fail here rather than on first login
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, err
	}

	keys, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize keys: %w", err)
	}
	app.keys = keys

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapService.Seed(ctx, app.seedConfig()); err != nil {
		app.pool.Close()
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to seed: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Banner prints the service name.
func Banner() {
	figure.NewFigure("passgate", "cybermedium", true).Print()
	fmt.Println()
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// No request can reach the pool any more.
	if err := app.pool.Close(); err != nil {
		app.logger.Error("worker pool stopped with error", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.pool = secctx.NewPool(app.cfg.Workers)

	app.accountService = &service.AccountService{Store: app.db}
	app.clientService = &service.ClientService{Store: app.db}
	app.tokenService = &service.TokenService{
		Store:      app.db,
		Accounts:   app.accountService,
		Cipher:     app.keys.Cipher,
		Generator:  jwtx.NewTokenGenerator(app.keys.Signing),
		Pool:       app.pool,
		AccessTTL:  app.cfg.AccessTokenTTL(),
		RefreshTTL: app.cfg.RefreshTokenTTL(),
	}
	app.bootstrapService = &service.BootstrapService{
		Clients:  app.clientService,
		Accounts: app.accountService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) seedConfig() service.SeedConfig {
	return service.SeedConfig{
		ClientID:        app.cfg.ClientID,
		ClientSecret:    app.cfg.ClientSecret,
		ClientScopes:    app.cfg.ClientScopes,
		AccessTTL:       app.cfg.AccessTokenTTL(),
		RefreshTTL:      app.cfg.RefreshTokenTTL(),
		TokenFormat:     jwtx.FormatSelfContained,
		AccountEmail:    app.cfg.SeedEmail,
		AccountName:     app.cfg.SeedName,
		AccountPassword: app.cfg.SeedPassword,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.Signing.KeySet(),
		app.keys.Signing.Verifier(),
		app.keys.Cipher.PublicKey(),
		BuildVersion,
		app.db,
		app.logger,
	)

	router.TokenService = app.tokenService
	router.AccountService = app.accountService
	router.ClientService = app.clientService
	router.Limits = app.cfg.Limits()
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Handler exposes the router for in-process tests.
func (app *Application) Handler() http.Handler {
	return app.router
}
