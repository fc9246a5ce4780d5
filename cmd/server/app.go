package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/examprep-api/internal/config"
	"github.com/phrazzld/examprep-api/internal/events"
	"github.com/phrazzld/examprep-api/internal/platform/sqlstore"
	"github.com/phrazzld/examprep-api/internal/service"
	"github.com/phrazzld/examprep-api/internal/service/auth"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB

	jwtService      auth.JWTService
	catalogService  service.CatalogService
	attemptService  service.AttemptService
	feedbackService service.FeedbackService
	progressService service.ProgressService

	eventEmitter *events.InMemoryEventEmitter
}

// newApplication creates a new application instance with all dependencies initialized.
// The database must already be open and migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, opts ...service.Option) (*application, error) {
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

	dialect, err := sqlstore.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	catalogStore := sqlstore.NewCatalogStore(db, dialect, logger)
	attemptStore := sqlstore.NewAttemptStore(db, dialect, logger)
	feedbackStore := sqlstore.NewFeedbackStore(db, dialect, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewAuditLogHandler(logger))

	serviceOpts := append([]service.Option{
		service.WithEmitter(app.eventEmitter),
		service.WithLogger(logger),
		service.WithRetryPolicy(
			cfg.Attempts.MaxCreateRetries,
			time.Duration(cfg.Attempts.RetryBackoffMs)*time.Millisecond,
		),
	}, opts...)

	if app.catalogService, err = service.NewCatalogService(catalogStore, serviceOpts...); err != nil {
		return nil, fmt.Errorf("failed to create catalog service: %w", err)
	}
	if app.attemptService, err = service.NewAttemptService(db, attemptStore, catalogStore, serviceOpts...); err != nil {
		return nil, fmt.Errorf("failed to create attempt service: %w", err)
	}
	if app.feedbackService, err = service.NewFeedbackService(db, feedbackStore, attemptStore, serviceOpts...); err != nil {
		return nil, fmt.Errorf("failed to create feedback service: %w", err)
	}
	if app.progressService, err = service.NewProgressService(attemptStore, serviceOpts...); err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	logger.Info("Application initialized successfully", "dialect", dialect.String())
	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down and releases
// resources.
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
