// Package main implements the entry point for the exam-prep API server,
// which tracks learners' attempts at exam sections and rolls them up into
// per-pack progress.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/examprep-api/internal/config"
	"github.com/phrazzld/examprep-api/internal/platform/database"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := initializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		app.logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration, sets up logging and the database, and
// wires every dependency.
func initializeApp(ctx context.Context) (*application, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver)

	db, err := database.Open(ctx, cfg.Database, l)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db, cfg.Database.Driver, database.MigrateUp, l); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

// loadDotEnv reads KEY=VALUE pairs from path into the environment. A missing
// file is not an error; variables already set keep their values.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	slog.Debug("environment file processed", "path", path)
	return nil
}
