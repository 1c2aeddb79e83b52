package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wayline/fleet/internal/auth/domain"
	httpapi "github.com/wayline/fleet/internal/auth/http"
	"github.com/wayline/fleet/internal/auth/revocation"
	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/internal/auth/store/drivers/sqlite"
	"github.com/wayline/fleet/pkg/cryptox"
	"github.com/wayline/fleet/pkg/jwtx"
	"github.com/wayline/fleet/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db          store.Store
	rdb         *redis.Client
	revocations *revocation.Store
	issuer      *jwtx.Issuer
	hasher      *cryptox.Hasher

	credentials *service.CredentialValidator
	sessions    *service.SessionManager
	accounts    *service.AccountService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "fleet-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	issuer, err := jwtx.NewIssuer(
		cfg.Issuer,
		[]byte(cfg.AccessSecret),
		[]byte(cfg.RefreshSecret),
		cfg.AccessTTL,
		cfg.RefreshTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.issuer = issuer

	hasher, err := cryptox.NewHasher(cfg.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize password hasher: %w", err)
	}
	app.hasher = hasher

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	app.initRevocations()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.rdb.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
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

// initRevocations wires the redis-backed denylist. Connectivity is probed but
// not required: the denylist fails open and the service degrades rather than
// refusing to start.
func (app *Application) initRevocations() {
	app.rdb = redis.NewClient(&redis.Options{
		Addr: app.cfg.RedisAddr,
		DB:   app.cfg.RedisDB,
	})
	app.revocations = revocation.NewStore(app.rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := app.revocations.Ping(ctx); err != nil {
		app.logger.Warn("revocation cache unreachable at startup", "error", err)
	}
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.credentials = &service.CredentialValidator{
		Store:   app.db,
		Hasher:  app.hasher,
		Lockout: domain.DefaultLockoutPolicy(),
	}

	app.sessions = &service.SessionManager{
		Store:       app.db,
		Revocations: app.revocations,
		Issuer:      app.issuer,
		Hasher:      app.hasher,
	}

	app.accounts = &service.AccountService{
		Store:      app.db,
		Hasher:     app.hasher,
		TOTPIssuer: "Wayline Fleet",
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.issuer,
		BuildVersion,
		app.db,
		app.revocations,
		app.cfg.Env == "prod",
		app.logger,
	)

	router.Credentials = app.credentials
	router.Sessions = app.sessions
	router.Accounts = app.accounts
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
