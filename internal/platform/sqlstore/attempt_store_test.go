package sqlstore

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/examprep-api/internal/domain"
	"github.com/phrazzld/examprep-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) attempt(t *testing.T, user uuid.UUID, examID int64, status domain.AttemptStatus, at time.Time) *domain.Attempt {
	t.Helper()
	n, err := f.attempts.NextAttemptNo(ctx, user, examID)
	require.NoError(t, err)
	a, err := domain.NewAttempt(user, examID, n, status, at)
	require.NoError(t, err)
	require.NoError(t, f.attempts.Create(ctx, a))
	return a
}

func TestAttemptStore_NumberingPerPair(t *testing.T) {
	f := newFixture(t)
	e1 := f.exam(t, nil, domain.SectionReading)
	e2 := f.exam(t, nil, domain.SectionWriting)
	alice, bob := uuid.New(), uuid.New()

	n, err := f.attempts.NextAttemptNo(ctx, alice, e1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, 1, f.attempt(t, alice, e1.ID, domain.AttemptStatusDraft, t0).AttemptNo)
	assert.Equal(t, 2, f.attempt(t, alice, e1.ID, domain.AttemptStatusDraft, t0).AttemptNo)
	assert.Equal(t, 1, f.attempt(t, alice, e2.ID, domain.AttemptStatusDraft, t0).AttemptNo)
	assert.Equal(t, 1, f.attempt(t, bob, e1.ID, domain.AttemptStatusDraft, t0).AttemptNo)

	list, err := f.attempts.ListForUserExam(ctx, alice, e1.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].AttemptNo)
	assert.Equal(t, 2, list[1].AttemptNo)
	assert.Equal(t, alice, list[0].UserID)
}

func TestAttemptStore_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionReading)
	user := uuid.New()
	first := f.attempt(t, user, e.ID, domain.AttemptStatusDraft, t0)

	clash, err := domain.NewAttempt(user, e.ID, first.AttemptNo, domain.AttemptStatusDraft, t0)
	require.NoError(t, err)
	err = f.attempts.Create(ctx, clash)
	assert.ErrorIs(t, err, store.ErrAttemptNumberTaken)
	assert.True(t, store.IsDuplicateError(err))
}

func TestAttemptStore_DeletedAttemptsDoNotBlockNumbers(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionReading)
	user := uuid.New()

	f.attempt(t, user, e.ID, domain.AttemptStatusDraft, t0)
	second := f.attempt(t, user, e.ID, domain.AttemptStatusDraft, t0)
	require.NoError(t, f.attempts.SoftDelete(ctx, second.ID, t0))

	n, err := f.attempts.NextAttemptNo(ctx, user, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reused := f.attempt(t, user, e.ID, domain.AttemptStatusDraft, t0)
	assert.Equal(t, 2, reused.AttemptNo)

	_, err = f.attempts.GetByID(ctx, second.ID)
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
}

func TestAttemptStore_UnknownExam(t *testing.T) {
	f := newFixture(t)
	a, err := domain.NewAttempt(uuid.New(), 777, 1, domain.AttemptStatusDraft, t0)
	require.NoError(t, err)
	assert.ErrorIs(t, f.attempts.Create(ctx, a), store.ErrInvalidEntity)
}

func TestAttemptStore_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionReading)
	a := f.attempt(t, uuid.New(), e.ID, domain.AttemptStatusDraft, t0)
	later := t0.Add(time.Minute)

	require.NoError(t, f.attempts.UpdateStatus(ctx, a.ID, domain.AttemptStatusDraft, domain.AttemptStatusSubmitted, later))

	got, err := f.attempts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptStatusSubmitted, got.Status)
	assert.True(t, later.Equal(got.UpdatedAt))
	assert.True(t, t0.Equal(got.CreatedAt))

	// stale expectation
	err = f.attempts.UpdateStatus(ctx, a.ID, domain.AttemptStatusDraft, domain.AttemptStatusGraded, later)
	assert.ErrorIs(t, err, store.ErrStaleWrite)

	err = f.attempts.UpdateStatus(ctx, 9999, domain.AttemptStatusDraft, domain.AttemptStatusGraded, later)
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)

	require.NoError(t, f.attempts.SoftDelete(ctx, a.ID, later))
	err = f.attempts.UpdateStatus(ctx, a.ID, domain.AttemptStatusSubmitted, domain.AttemptStatusGraded, later)
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
}

func TestAttemptStore_UpdateResponse(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionSpeaking)
	a := f.attempt(t, uuid.New(), e.ID, domain.AttemptStatusInProgress, t0)

	require.NoError(t, f.attempts.UpdateResponse(ctx, a.ID, domain.Response{Text: ptr("first draft")}, t0))
	require.NoError(t, f.attempts.UpdateResponse(ctx, a.ID, domain.Response{VoicePath: ptr("voice/a.ogg")}, t0))

	got, err := f.attempts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResponseText)
	require.NotNil(t, got.ResponseVoicePath)
	assert.Equal(t, "first draft", *got.ResponseText)
	assert.Equal(t, "voice/a.ogg", *got.ResponseVoicePath)

	err = f.attempts.UpdateResponse(ctx, 404, domain.Response{Text: ptr("x")}, t0)
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
}

func TestAttemptStore_UpdateResponse_RejectsFinishedAttempt(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionWriting)
	a := f.attempt(t, uuid.New(), e.ID, domain.AttemptStatusInProgress, t0)
	require.NoError(t, f.attempts.UpdateResponse(ctx, a.ID, domain.Response{Text: ptr("essay")}, t0))

	// a grader submits between the learner's read and write
	require.NoError(t, f.attempts.UpdateStatus(ctx, a.ID, domain.AttemptStatusInProgress, domain.AttemptStatusSubmitted, t0))

	err := f.attempts.UpdateResponse(ctx, a.ID, domain.Response{Text: ptr("late edit")}, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.attempts.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResponseText)
	assert.Equal(t, "essay", *got.ResponseText)

	require.NoError(t, f.attempts.SoftDelete(ctx, a.ID, t0))
	err = f.attempts.UpdateResponse(ctx, a.ID, domain.Response{Text: ptr("x")}, t0)
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
}

func TestAttemptStore_GetOwnerIncludesDeleted(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionReading)
	owner := uuid.New()
	a := f.attempt(t, owner, e.ID, domain.AttemptStatusDraft, t0)

	got, err := f.attempts.GetOwner(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	require.NoError(t, f.attempts.SoftDelete(ctx, a.ID, t0))
	got, err = f.attempts.GetOwner(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	_, err = f.attempts.GetOwner(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrAttemptNotFound)
}

func TestAttemptStore_FeedbackLink(t *testing.T) {
	f := newFixture(t)
	e := f.exam(t, nil, domain.SectionWriting)
	user := uuid.New()
	a1 := f.attempt(t, user, e.ID, domain.AttemptStatusSubmitted, t0)
	a2 := f.attempt(t, user, e.ID, domain.AttemptStatusSubmitted, t0)

	fb, err := domain.NewFeedback("Band 7: good coherence", t0)
	require.NoError(t, err)
	require.NoError(t, f.feedbacks.Create(ctx, fb))

	require.NoError(t, f.attempts.SetFeedback(ctx, a1.ID, fb.ID, t0))
	require.NoError(t, f.attempts.SetFeedback(ctx, a2.ID, fb.ID, t0))
	require.NoError(t, f.attempts.SoftDelete(ctx, a2.ID, t0))

	got, err := f.attempts.GetByID(ctx, a1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.FeedbackID)
	assert.Equal(t, fb.ID, *got.FeedbackID)

	// deleted attempts are cleared too
	n, err := f.attempts.ClearFeedback(ctx, fb.ID, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err = f.attempts.GetByID(ctx, a1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FeedbackID)

	err = f.attempts.SetFeedback(ctx, a1.ID, 31337, t0)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestAttemptStore_ListFinishedForProgress(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	other := uuid.New()

	p1 := f.pack(t, domain.ExamSystemIELTS, "IELTS Pack 1")
	p2 := f.pack(t, domain.ExamSystemIELTS, "IELTS Pack 2")
	deletedPack := f.pack(t, domain.ExamSystemIELTS, "Gone")

	speaking := f.exam(t, &p1.ID, domain.SectionSpeaking)
	reading := f.exam(t, &p2.ID, domain.SectionReading)
	orphan := f.exam(t, &deletedPack.ID, domain.SectionReading)
	standalone := f.exam(t, nil, domain.SectionWriting)
	removedExam := f.exam(t, &p2.ID, domain.SectionWriting)

	s1 := f.attempt(t, user, speaking.ID, domain.AttemptStatusSubmitted, t0.Add(1*time.Minute))
	r1 := f.attempt(t, user, reading.ID, domain.AttemptStatusGraded, t0.Add(2*time.Minute))
	s2 := f.attempt(t, user, speaking.ID, domain.AttemptStatusReviewed, t0.Add(3*time.Minute))
	f.attempt(t, user, speaking.ID, domain.AttemptStatusInProgress, t0.Add(4*time.Minute))
	gone := f.attempt(t, user, speaking.ID, domain.AttemptStatusGraded, t0.Add(5*time.Minute))
	f.attempt(t, user, orphan.ID, domain.AttemptStatusGraded, t0.Add(6*time.Minute))
	f.attempt(t, user, standalone.ID, domain.AttemptStatusGraded, t0.Add(7*time.Minute))
	f.attempt(t, user, removedExam.ID, domain.AttemptStatusGraded, t0.Add(8*time.Minute))
	f.attempt(t, other, speaking.ID, domain.AttemptStatusGraded, t0.Add(9*time.Minute))

	require.NoError(t, f.attempts.SoftDelete(ctx, gone.ID, t0))
	require.NoError(t, f.catalog.SoftDeletePack(ctx, deletedPack.ID, t0))
	require.NoError(t, f.catalog.SoftDeleteExam(ctx, removedExam.ID, t0))

	entries, err := f.attempts.ListFinishedForProgress(ctx, user)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, []int64{s2.ID, r1.ID, s1.ID},
		[]int64{entries[0].AttemptID, entries[1].AttemptID, entries[2].AttemptID})
	assert.Equal(t, p1.ID, *entries[0].PackID)
	assert.Equal(t, "IELTS Pack 1", entries[0].PackTitle)
	assert.Equal(t, domain.SectionSpeaking, entries[0].Section)
	assert.Equal(t, domain.ExamSystemIELTS, entries[0].System)
	assert.True(t, t0.Add(3*time.Minute).Equal(entries[0].CreatedAt))
}

func TestAttemptStore_ListFinishedForProgress_TieBreaksOnID(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	p := f.pack(t, domain.ExamSystemIELTS, "P")
	e := f.exam(t, &p.ID, domain.SectionReading)

	a := f.attempt(t, user, e.ID, domain.AttemptStatusSubmitted, t0)
	b := f.attempt(t, user, e.ID, domain.AttemptStatusSubmitted, t0)

	entries, err := f.attempts.ListFinishedForProgress(ctx, user)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, b.ID, entries[0].AttemptID)
	assert.Equal(t, a.ID, entries[1].AttemptID)
}

func TestAttemptStore_LockPairIsNoOpOnSQLite(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.attempts.LockPair(ctx, uuid.New(), 1))
	assert.Equal(t, "user_exam:00000000-0000-0000-0000-000000000000:42", pairLockKey(uuid.Nil, 42))
}

func TestFeedbackStore(t *testing.T) {
	f := newFixture(t)

	fb, err := domain.NewFeedback("Clear structure", t0)
	require.NoError(t, err)
	require.NoError(t, f.feedbacks.Create(ctx, fb))

	got, err := f.feedbacks.GetByID(ctx, fb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clear structure", got.Description)

	require.NoError(t, f.feedbacks.SoftDelete(ctx, fb.ID, t0))
	require.NoError(t, f.feedbacks.SoftDelete(ctx, fb.ID, t0))
	_, err = f.feedbacks.GetByID(ctx, fb.ID)
	assert.ErrorIs(t, err, store.ErrFeedbackNotFound)
	assert.ErrorIs(t, f.feedbacks.SoftDelete(ctx, 555, t0), store.ErrFeedbackNotFound)
}
