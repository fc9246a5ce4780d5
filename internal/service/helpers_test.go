package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/events"
	"github.com/phrazzld/examprep-api/internal/platform/logger"
	"github.com/phrazzld/examprep-api/internal/platform/sqlstore"
	"github.com/phrazzld/examprep-api/internal/service"
	"github.com/phrazzld/examprep-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu   sync.Mutex
	next time.Time
}

func newStepClock() *stepClock {
	return &stepClock{next: time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next = c.next.Add(time.Minute)
	return now
}

type env struct {
	db        *sql.DB
	catalog   service.CatalogService
	attempts  service.AttemptService
	feedback  service.FeedbackService
	progress  service.ProgressService
	recorder  *events.Recorder
	rawStore  *sqlstore.AttemptStore
	ctx       context.Context
	logBuffer *logger.TestLogBuffer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvOn(t, testdb.OpenSQLite(t), sqlstore.SQLite)
}

func newEnvOn(t *testing.T, db *sql.DB, dialect sqlstore.Dialect) *env {
	t.Helper()

	ctx, buf := logger.NewTestContext(t)
	log := logger.FromContext(ctx)
	recorder := &events.Recorder{}
	clock := newStepClock()

	catalogStore := sqlstore.NewCatalogStore(db, dialect, log)
	attemptStore := sqlstore.NewAttemptStore(db, dialect, log)
	feedbackStore := sqlstore.NewFeedbackStore(db, dialect, log)

	opts := []service.Option{
		service.WithClock(clock.Now),
		service.WithEmitter(recorder),
		service.WithLogger(log),
		service.WithRetryPolicy(5, time.Millisecond),
	}

	catalog, err := service.NewCatalogService(catalogStore, opts...)
	require.NoError(t, err)
	attempts, err := service.NewAttemptService(db, attemptStore, catalogStore, opts...)
	require.NoError(t, err)
	feedback, err := service.NewFeedbackService(db, feedbackStore, attemptStore, opts...)
	require.NoError(t, err)
	progressSvc, err := service.NewProgressService(attemptStore, opts...)
	require.NoError(t, err)

	return &env{
		db:        db,
		catalog:   catalog,
		attempts:  attempts,
		feedback:  feedback,
		progress:  progressSvc,
		recorder:  recorder,
		rawStore:  attemptStore,
		ctx:       ctx,
		logBuffer: buf,
	}
}

func (e *env) pack(t *testing.T, title string) *domain.Pack {
	t.Helper()
	p, err := e.catalog.CreatePack(e.ctx, domain.ExamSystemIELTS, title)
	require.NoError(t, err)
	return p
}

func (e *env) exam(t *testing.T, packID int64, section domain.Section) *domain.Exam {
	t.Helper()
	ex, err := e.catalog.CreateExam(e.ctx, &packID, section, domain.ExamSystemIELTS, 3600)
	require.NoError(t, err)
	return ex
}

func (e *env) attempt(t *testing.T, userID uuid.UUID, examID int64) *domain.Attempt {
	t.Helper()
	a, err := e.attempts.CreateAttempt(e.ctx, userID, examID, "")
	require.NoError(t, err)
	return a
}

func (e *env) advance(t *testing.T, attemptID int64, status domain.AttemptStatus) {
	t.Helper()
	_, err := e.attempts.AdvanceStatus(e.ctx, attemptID, status)
	require.NoError(t, err)
}

func numbers(attempts []*domain.Attempt) []int {
	out := make([]int, len(attempts))
	for i, a := range attempts {
		out[i] = a.AttemptNo
	}
	return out
}
