package testdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/examprep-api/internal/config"
	"github.com/phrazzld/examprep-api/internal/platform/database"
)

var sqliteSeq atomic.Int64

// quietLogger keeps goose output out of test logs unless something fails.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SQLiteConfig returns a database config for a fresh, named in-memory database.
func SQLiteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL: fmt.Sprintf(
			"file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
			name, sqliteSeq.Add(1)),
		MaxOpenConns: 1,
	}
}

// OpenSQLite opens a migrated in-memory SQLite database that is closed when
// the test ends.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()
	return open(t, SQLiteConfig(t))
}

// OpenPostgres opens the database at EXAMPREP_TEST_DB_URL, migrates it and
// empties every table. The test is skipped when the variable is unset.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()
	if ShouldSkipDatabaseTest() {
		t.Skipf("%s not set, skipping postgres test", EnvTestDatabaseURL)
	}

	db := open(t, config.DatabaseConfig{
		Driver:                 config.DriverPostgres,
		URL:                    GetTestDatabaseURL(),
		MaxOpenConns:           20,
		MaxIdleConns:           5,
		ConnMaxLifetimeMinutes: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx,
		`TRUNCATE user_exams, feedback, questions, exams, exam_packs RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to reset postgres test database: %v", err)
	}
	return db
}

func open(t *testing.T, cfg config.DatabaseConfig) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg, quietLogger())
	if err != nil {
		t.Fatalf("failed to open %s test database: %v", cfg.Driver, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})

	if err := database.Migrate(ctx, db, cfg.Driver, database.MigrateUp, quietLogger()); err != nil {
		t.Fatalf("failed to migrate %s test database: %v", cfg.Driver, err)
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("warning: failed to roll back transaction: %v", err)
		}
	}()

	fn(t, tx)
}
