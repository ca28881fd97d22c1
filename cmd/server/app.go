package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/rosterhq/roster-api/internal/config"
	"github.com/rosterhq/roster-api/internal/platform/postgres"
	"github.com/rosterhq/roster-api/internal/platform/storage"
	"github.com/rosterhq/roster-api/internal/service"
	"github.com/rosterhq/roster-api/internal/service/auth"
	"github.com/rosterhq/roster-api/internal/store"
)

// application holds the shared application dependencies so setup and
// shutdown stay in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore

	jwtService  auth.JWTService
	hasher      auth.PasswordHasher
	userService *service.UserService
	authService *service.AuthService
	avatars     *storage.LocalStore
}

// newApplication wires all dependencies. It accepts the core pieces
// that must exist beforehand: configuration, logger and the database
// connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher()

	userStore := postgres.NewPostgresUserStore(db, logger)
	app.userStore = userStore

	app.avatars, err = storage.NewLocalStore(
		cfg.Storage.UploadDir,
		cfg.Storage.MaxUploadBytes,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	app.userService = service.NewUserService(db, userStore, userStore, app.hasher, logger)
	app.authService = service.NewAuthService(
		app.userStore,
		app.userService,
		app.hasher,
		app.jwtService,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
