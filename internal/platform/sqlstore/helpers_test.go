package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/testdb"
	"github.com/stretchr/testify/require"
)

var (
	ctx = context.Background()
	t0  = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	db        *sql.DB
	catalog   *CatalogStore
	attempts  *AttemptStore
	feedbacks *FeedbackStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.OpenSQLite(t)
	return &fixture{
		db:        db,
		catalog:   NewCatalogStore(db, SQLite, nil),
		attempts:  NewAttemptStore(db, SQLite, nil),
		feedbacks: NewFeedbackStore(db, SQLite, nil),
	}
}

func (f *fixture) pack(t *testing.T, system domain.ExamSystem, title string) *domain.Pack {
	t.Helper()
	p, err := domain.NewPack(system, title, t0)
	require.NoError(t, err)
	require.NoError(t, f.catalog.CreatePack(ctx, p))
	return p
}

func (f *fixture) exam(t *testing.T, packID *int64, section domain.Section) *domain.Exam {
	t.Helper()
	e, err := domain.NewExam(packID, section, domain.ExamSystemIELTS, 3600, t0)
	require.NoError(t, err)
	require.NoError(t, f.catalog.CreateExam(ctx, e))
	return e
}

func ptr[T any](v T) *T { return &v }
