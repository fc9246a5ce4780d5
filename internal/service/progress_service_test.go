package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressService_NilStore(t *testing.T) {
	_, err := service.NewProgressService(nil)
	assert.ErrorContains(t, err, "attempt store cannot be nil")
}

func TestProgressService_IELTSPackScenario(t *testing.T) {
	e := newEnv(t)
	p := e.pack(t, "IELTS Pack 1")
	speaking := e.exam(t, p.ID, domain.SectionSpeaking)
	writing := e.exam(t, p.ID, domain.SectionWriting)
	user := uuid.New()

	onSpeaking := e.attempt(t, user, speaking.ID)
	onWriting := e.attempt(t, user, writing.ID)
	assert.Equal(t, 1, onSpeaking.AttemptNo)
	assert.Equal(t, 1, onWriting.AttemptNo)

	e.advance(t, onSpeaking.ID, domain.AttemptStatusSubmitted)
	e.advance(t, onWriting.ID, domain.AttemptStatusGraded)

	cards, err := e.progress.BuildProgressCards(e.ctx, user)
	require.NoError(t, err)
	require.Len(t, cards, 1)

	card := cards[0]
	assert.Equal(t, p.ID, card.PackID)
	assert.Equal(t, "IELTS Pack 1", card.Title)
	assert.Equal(t, domain.ExamSystemIELTS, card.System)
	require.NotNil(t, card.Sections.Speaking)
	require.NotNil(t, card.Sections.Writing)
	assert.Equal(t, onSpeaking.ID, *card.Sections.Speaking)
	assert.Equal(t, onWriting.ID, *card.Sections.Writing)
	assert.Nil(t, card.Sections.Reading)
	assert.Nil(t, card.Sections.Listening)
	assert.Equal(t, onWriting.CreatedAt, card.LastAttemptAt)
}

func TestProgressService_MostRecentFinishedAttemptWins(t *testing.T) {
	e := newEnv(t)
	p := e.pack(t, "IELTS Pack 1")
	speaking := e.exam(t, p.ID, domain.SectionSpeaking)
	user := uuid.New()

	var last *domain.Attempt
	for _, status := range []domain.AttemptStatus{
		domain.AttemptStatusSubmitted,
		domain.AttemptStatusGraded,
		domain.AttemptStatusReviewed,
	} {
		a, err := e.attempts.CreateAttempt(e.ctx, user, speaking.ID, status)
		require.NoError(t, err)
		last = a
	}
	// a later unfinished attempt does not count
	e.attempt(t, user, speaking.ID)

	cards, err := e.progress.BuildProgressCards(e.ctx, user)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.NotNil(t, cards[0].Sections.Speaking)
	assert.Equal(t, last.ID, *cards[0].Sections.Speaking)
	assert.Equal(t, last.CreatedAt, cards[0].LastAttemptAt)
}

func TestProgressService_UnfinishedAttemptsYieldNoCards(t *testing.T) {
	e := newEnv(t)
	p := e.pack(t, "IELTS Pack 1")
	ex := e.exam(t, p.ID, domain.SectionReading)
	user := uuid.New()

	e.attempt(t, user, ex.ID)
	a := e.attempt(t, user, ex.ID)
	e.advance(t, a.ID, domain.AttemptStatusInProgress)

	cards, err := e.progress.BuildProgressCards(e.ctx, user)
	require.NoError(t, err)
	assert.NotNil(t, cards)
	assert.Empty(t, cards)
}

func TestProgressService_ExcludesDeletedRows(t *testing.T) {
	e := newEnv(t)
	kept := e.pack(t, "IELTS Pack 1")
	dropped := e.pack(t, "IELTS Pack 2")
	keptExam := e.exam(t, kept.ID, domain.SectionListening)
	droppedExam := e.exam(t, dropped.ID, domain.SectionListening)
	deletedExam := e.exam(t, kept.ID, domain.SectionReading)
	user := uuid.New()

	finished := func(examID int64) *domain.Attempt {
		a, err := e.attempts.CreateAttempt(e.ctx, user, examID, domain.AttemptStatusSubmitted)
		require.NoError(t, err)
		return a
	}
	onKept := finished(keptExam.ID)
	finished(droppedExam.ID)
	finished(deletedExam.ID)
	deletedAttempt := finished(keptExam.ID)

	require.NoError(t, e.catalog.SoftDeletePack(e.ctx, dropped.ID))
	require.NoError(t, e.catalog.SoftDeleteExam(e.ctx, deletedExam.ID))
	require.NoError(t, e.attempts.SoftDeleteAttempt(e.ctx, deletedAttempt.ID))

	cards, err := e.progress.BuildProgressCards(e.ctx, user)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, kept.ID, cards[0].PackID)
	require.NotNil(t, cards[0].Sections.Listening)
	assert.Equal(t, onKept.ID, *cards[0].Sections.Listening)
	assert.Nil(t, cards[0].Sections.Reading)
}

func TestProgressService_CardsOrderedByLastActivity(t *testing.T) {
	e := newEnv(t)
	p1 := e.pack(t, "IELTS Pack 1")
	p2 := e.pack(t, "IELTS Pack 2")
	e1 := e.exam(t, p1.ID, domain.SectionWriting)
	e2 := e.exam(t, p2.ID, domain.SectionWriting)
	user := uuid.New()

	for _, examID := range []int64{e1.ID, e2.ID} {
		_, err := e.attempts.CreateAttempt(e.ctx, user, examID, domain.AttemptStatusGraded)
		require.NoError(t, err)
	}

	cards, err := e.progress.BuildProgressCards(e.ctx, user)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, p2.ID, cards[0].PackID)
	assert.Equal(t, p1.ID, cards[1].PackID)
	assert.True(t, cards[0].LastAttemptAt.After(cards[1].LastAttemptAt))

	// other users see nothing
	others, err := e.progress.BuildProgressCards(e.ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}
