package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/phrazzld/examprep-api/internal/config"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/platform/database"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/platform/sqlstore"
	"github.com/phrazzld/examprep-api/internal/service"
	"github.com/phrazzld/examprep-api/internal/service/auth"
)

// env is what every database-backed command needs.
type env struct {
	cfg     *config.Config
	db      *sql.DB
	dialect sqlstore.Dialect
	logger  *slog.Logger
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, ok := logger.ParseLevel(cfg.Server.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}
	l := logger.New(os.Stderr, level)

	dialect, err := sqlstore.DialectFor(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database, l)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, dialect: dialect, logger: l}, nil
}

func (e *env) close() {
	if err := e.db.Close(); err != nil {
		e.logger.Warn("failed to close database", "error", err)
	}
}

func parseUser(fs *flag.FlagSet, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s requires -user", errUsage, fs.Name())
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: -user must be a non-nil UUID", errUsage)
	}
	return id, nil
}

func slot(id *int64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatInt(*id, 10)
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: migrate takes exactly one of up, down, status, version", errUsage)
	}
	command := args[0]
	switch command {
	case database.MigrateUp, database.MigrateDown, database.MigrateStatus, database.MigrateVersion:
	default:
		return fmt.Errorf("%w: unknown migrate command %q", errUsage, command)
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := database.Migrate(ctx, e.db, e.cfg.Database.Driver, command, e.logger); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(out, "migrate %s completed (%s)\n", command, e.cfg.Database.Driver)
	return nil
}

func runPacks(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("packs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	systemFlag := fs.String("system", string(domain.ExamSystemIELTS), "exam system: ielts, toefl or general")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	system, err := domain.ParseExamSystem(*systemFlag)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	catalog, err := service.NewCatalogService(
		sqlstore.NewCatalogStore(e.db, e.dialect, e.logger),
		service.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	cards, err := catalog.ListPackCards(ctx, system)
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(out, "%s packs\n", system)
	if len(cards) == 0 {
		color.New(color.FgYellow).Fprintln(out, "no packs")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Title", "Listening", "Reading", "Writing", "Speaking"})
	for _, c := range cards {
		table.Append([]string{
			strconv.FormatInt(c.PackID, 10),
			c.Title,
			slot(c.Sections.Listening),
			slot(c.Sections.Reading),
			slot(c.Sections.Writing),
			slot(c.Sections.Speaking),
		})
	}
	table.Render()
	return nil
}

func runProgress(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("progress", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userFlag := fs.String("user", "", "learner UUID")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	userID, err := parseUser(fs, *userFlag)
	if err != nil {
		return err
	}

	e, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	progressSvc, err := service.NewProgressService(
		sqlstore.NewAttemptStore(e.db, e.dialect, e.logger),
		service.WithLogger(e.logger),
	)
	if err != nil {
		return err
	}
	cards, err := progressSvc.BuildProgressCards(ctx, userID)
	if err != nil {
		return err
	}

	color.New(color.FgCyan).Fprintf(out, "progress for %s\n", userID)
	if len(cards) == 0 {
		color.New(color.FgYellow).Fprintln(out, "no finished attempts")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Pack", "Title", "System", "Speaking", "Writing", "Reading", "Listening", "Last attempt"})
	for _, c := range cards {
		table.Append([]string{
			strconv.FormatInt(c.PackID, 10),
			c.Title,
			string(c.System),
			slot(c.Sections.Speaking),
			slot(c.Sections.Writing),
			slot(c.Sections.Reading),
			slot(c.Sections.Listening),
			c.LastAttemptAt.UTC().Format(time.RFC3339),
		})
	}
	table.Render()
	return nil
}

// runToken prints only the token so it can be captured by scripts.
func runToken(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userFlag := fs.String("user", "", "user UUID to put in the token")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	userID, err := parseUser(fs, *userFlag)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
