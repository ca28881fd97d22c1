// Package main implements the entry point for the roster API server,
// which manages user accounts behind a JWT-authenticated HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/rosterhq/roster-api/internal/config"
	"github.com/rosterhq/roster-api/internal/platform/logger"
	"github.com/rosterhq/roster-api/internal/redact"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command (up, down, status) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		// Driver errors can echo the connection string.
		log.Fatalf("Failed to connect to database: %s", redact.Error(err))
	}

	if *migrateCmd != "" {
		if err := runMigrations(db, *migrateCmd); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	if err := runMigrations(db, "up"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
