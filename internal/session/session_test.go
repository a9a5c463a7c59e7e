package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/testutil"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

type recordingListener struct {
	mu    sync.Mutex
	calls []int64
}

func (l *recordingListener) OnReviewRecorded(_ context.Context, _ int64, vocabularyID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, vocabularyID)
}

func (l *recordingListener) vocabularyIDs() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int64(nil), l.calls...)
}

type fixture struct {
	repo     *testutil.StudyRepository
	store    *testutil.VocabularyStore
	listener *recordingListener
	service  *Service
	now      time.Time
}

func newFixture(t *testing.T, items ...vocabulary.Item) *fixture {
	t.Helper()
	engine, err := scheduling.NewEngine(nil)
	require.NoError(t, err)

	f := &fixture{
		store:    testutil.NewVocabularyStore(items...),
		listener: &recordingListener{},
		now:      time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	f.repo = testutil.NewStudyRepository(engine, f.store)
	f.service = NewService(f.repo, f.store, f.listener, Config{
		BatchSize: 50,
		Outbox: OutboxConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     2 * time.Millisecond,
		},
	})
	f.service.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) register(t *testing.T, userID, vocabularyID int64, boxLevel int) study.Key {
	t.Helper()
	key := study.Key{UserID: userID, VocabularyID: vocabularyID, TrainingType: scheduling.Vocabulary}
	f.repo.Put(study.StudyStatus{
		UserID:       userID,
		VocabularyID: vocabularyID,
		TrainingType: scheduling.Vocabulary,
		BoxLevel:     boxLevel,
	})
	return key
}

func (f *fixture) boxLevel(t *testing.T, key study.Key) int {
	t.Helper()
	status, ok := f.repo.Status(key)
	require.True(t, ok)
	return status.BoxLevel
}

func closeSession(t *testing.T, session *Session) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, session.Close(ctx))
}

var (
	abide  = vocabulary.Item{ID: 1, Text: "abide", PartOfSpeech: "verb"}
	candid = vocabulary.Item{ID: 2, Text: "candid", PartOfSpeech: "adjective"}
	zephyr = vocabulary.Item{ID: 3, Text: "zephyr", PartOfSpeech: "noun"}
)

func TestService_StartSession(t *testing.T) {
	t.Run("no due items gives an empty session", func(t *testing.T) {
		f := newFixture(t, abide)
		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)

		assert.Equal(t, PhaseEmpty, session.Status().Phase)
		assert.Nil(t, session.CurrentItem())
		_, err = session.Answer(true)
		assert.ErrorIs(t, err, ErrSessionFinished)
		assert.NoError(t, session.Close(context.Background()))
	})

	t.Run("items are presented in due order", func(t *testing.T) {
		f := newFixture(t, abide, candid, zephyr)
		yesterday := f.now.Add(-24 * time.Hour)
		lastWeek := f.now.Add(-7 * 24 * time.Hour)
		tomorrow := f.now.Add(24 * time.Hour)
		f.repo.Put(study.StudyStatus{UserID: 1, VocabularyID: abide.ID, TrainingType: scheduling.Vocabulary, BoxLevel: 2, NextReviewDate: &yesterday})
		f.repo.Put(study.StudyStatus{UserID: 1, VocabularyID: candid.ID, TrainingType: scheduling.Vocabulary, BoxLevel: 3, NextReviewDate: &lastWeek})
		f.repo.Put(study.StudyStatus{UserID: 1, VocabularyID: zephyr.ID, TrainingType: scheduling.Vocabulary, BoxLevel: 3, NextReviewDate: &tomorrow})

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		defer closeSession(t, session)

		assert.Equal(t, 2, session.Status().TotalCount)
		assert.Equal(t, PhaseReady, session.Status().Phase)
		assert.Equal(t, "candid", session.CurrentItem().Text)

		result, err := session.Answer(true)
		require.NoError(t, err)
		assert.Equal(t, PhasePresenting, result.Status.Phase)
		assert.Equal(t, "abide", session.CurrentItem().Text)
	})

	t.Run("batch size caps the queue", func(t *testing.T) {
		f := newFixture(t, abide, candid, zephyr)
		f.service.cfg.BatchSize = 2
		for _, item := range []vocabulary.Item{abide, candid, zephyr} {
			f.register(t, 1, item.ID, 0)
		}
		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		defer closeSession(t, session)
		assert.Equal(t, 2, session.Status().TotalCount)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.StartSession(context.Background(), 0, scheduling.Vocabulary)
		assert.ErrorIs(t, err, study.ErrNotAuthenticated)
	})

	t.Run("invalid training type", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.StartSession(context.Background(), 1, scheduling.TrainingType(9))
		assert.ErrorIs(t, err, ErrInvalidTrainingType)
	})
}

func TestSession_NewItemReachesTopLevel(t *testing.T) {
	f := newFixture(t, abide)
	key := f.register(t, 1, abide.ID, 0)

	for want := 1; want <= scheduling.MaxBoxLevel; want++ {
		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		require.Equal(t, 1, session.Status().TotalCount, "item must be due before answer %d", want)

		result, err := session.Answer(true)
		require.NoError(t, err)
		assert.Equal(t, want, result.NewBoxLevel)
		assert.True(t, result.Status.IsCompleted)
		assert.Nil(t, session.CurrentItem(), "a correct item is not presented again")

		closeSession(t, session)
		assert.Equal(t, want, f.boxLevel(t, key))

		// Move past the next review date.
		f.now = f.now.Add(90 * 24 * time.Hour)
	}
	assert.Len(t, f.repo.History(), scheduling.MaxBoxLevel)
}

func TestSession_FailedItemReappears(t *testing.T) {
	f := newFixture(t, abide, candid)
	abideKey := f.register(t, 1, abide.ID, 4)
	f.register(t, 1, candid.ID, 0)

	session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
	require.NoError(t, err)
	require.Equal(t, "abide", session.CurrentItem().Text)

	result, err := session.Answer(false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewBoxLevel)
	assert.Equal(t, "candid", session.CurrentItem().Text)

	_, err = session.Answer(true)
	require.NoError(t, err)
	assert.Equal(t, "abide", session.CurrentItem().Text)
	level, ok := session.CurrentBoxLevel()
	require.True(t, ok)
	assert.Equal(t, 1, level)

	result, err = session.Answer(true)
	require.NoError(t, err)
	assert.True(t, result.Status.IsCompleted)
	assert.Equal(t, 3, result.Status.AnsweredCount)

	closeSession(t, session)
	assert.Equal(t, 2, f.boxLevel(t, abideKey))

	history := f.repo.History()
	require.Len(t, history, 3)
	assert.Equal(t, 4, history[0].BeforeBoxLevel)
	assert.Equal(t, 1, history[0].AfterBoxLevel)
	assert.False(t, history[0].IsCorrect)
	assert.Equal(t, []int64{abide.ID, candid.ID, abide.ID}, f.listener.vocabularyIDs())
}

func TestSession_WrongCorrectCorrect(t *testing.T) {
	f := newFixture(t, abide, candid, zephyr)
	for _, item := range []vocabulary.Item{abide, candid, zephyr} {
		f.register(t, 1, item.ID, 0)
	}

	session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
	require.NoError(t, err)
	defer closeSession(t, session)

	for _, correct := range []bool{false, true, true} {
		_, err := session.Answer(correct)
		require.NoError(t, err)
	}
	status := session.Status()
	assert.False(t, status.IsCompleted)
	assert.Equal(t, 2, status.CorrectCount)
	assert.Equal(t, "abide", session.CurrentItem().Text)

	result, err := session.Answer(true)
	require.NoError(t, err)
	assert.True(t, result.Status.IsCompleted)
	assert.Equal(t, PhaseCompleted, result.Status.Phase)
}

func TestSession_UsersAreIndependent(t *testing.T) {
	f := newFixture(t, abide)
	aliceKey := f.register(t, 1, abide.ID, 0)
	bobKey := f.register(t, 2, abide.ID, 0)

	alice, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
	require.NoError(t, err)
	bob, err := f.service.StartSession(context.Background(), 2, scheduling.Vocabulary)
	require.NoError(t, err)

	_, err = alice.Answer(true)
	require.NoError(t, err)
	_, err = bob.Answer(false)
	require.NoError(t, err)
	_, err = bob.Answer(true)
	require.NoError(t, err)

	closeSession(t, alice)
	closeSession(t, bob)

	assert.Equal(t, 1, f.boxLevel(t, aliceKey))
	assert.Equal(t, 2, f.boxLevel(t, bobKey))
	aliceStatus, _ := f.repo.Status(aliceKey)
	bobStatus, _ := f.repo.Status(bobKey)
	assert.NotEqual(t, aliceStatus.ID, bobStatus.ID)
}

func TestSession_Outbox(t *testing.T) {
	t.Run("transient failure is retried", func(t *testing.T) {
		f := newFixture(t, abide)
		key := f.register(t, 1, abide.ID, 0)
		f.repo.FailRecordReview(fmt.Errorf("record review: %w", study.ErrPersistenceUnavailable))

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		_, err = session.Answer(true)
		require.NoError(t, err)
		closeSession(t, session)

		assert.Equal(t, 2, f.repo.RecordReviewCalls())
		assert.Empty(t, session.Status().Warnings)
		assert.Equal(t, 1, f.boxLevel(t, key))
	})

	t.Run("exhausted retries become a warning", func(t *testing.T) {
		f := newFixture(t, abide)
		key := f.register(t, 1, abide.ID, 0)
		unavailable := fmt.Errorf("record review: %w", study.ErrPersistenceUnavailable)
		f.repo.FailRecordReview(unavailable, unavailable, unavailable)

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		result, err := session.Answer(true)
		require.NoError(t, err)
		assert.True(t, result.Status.IsCompleted, "session advances while saving")
		closeSession(t, session)

		status := session.Status()
		require.Len(t, status.Warnings, 1)
		assert.Equal(t, abide.ID, status.Warnings[0].VocabularyID)
		assert.Contains(t, status.Warnings[0].Message, "abide")
		assert.Equal(t, 0, status.Pending)
		assert.Equal(t, 3, f.repo.RecordReviewCalls())
		assert.Equal(t, 0, f.boxLevel(t, key))
		assert.Empty(t, f.listener.vocabularyIDs())
	})

	t.Run("missing status is not retried", func(t *testing.T) {
		f := newFixture(t, abide)
		key := f.register(t, 1, abide.ID, 0)

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		require.NoError(t, f.repo.Unregister(context.Background(), key))

		_, err = session.Answer(true)
		require.NoError(t, err)
		closeSession(t, session)

		assert.Equal(t, 1, f.repo.RecordReviewCalls())
		assert.Len(t, session.Status().Warnings, 1)
	})

	t.Run("answers are saved in order", func(t *testing.T) {
		f := newFixture(t, abide)
		key := f.register(t, 1, abide.ID, 5)

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		for _, correct := range []bool{false, false, true} {
			_, err := session.Answer(correct)
			require.NoError(t, err)
		}
		closeSession(t, session)

		history := f.repo.History()
		require.Len(t, history, 3)
		assert.Equal(t, []int{5, 1, 1}, []int{history[0].BeforeBoxLevel, history[1].BeforeBoxLevel, history[2].BeforeBoxLevel})
		assert.Equal(t, 2, f.boxLevel(t, key))
	})

	t.Run("answers after close are rejected", func(t *testing.T) {
		f := newFixture(t, abide, candid)
		f.register(t, 1, abide.ID, 0)
		f.register(t, 1, candid.ID, 0)

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		closeSession(t, session)

		_, err = session.Answer(true)
		assert.ErrorIs(t, err, errOutboxClosed)
		assert.Equal(t, 0, session.Status().AnsweredCount)
	})

	t.Run("close with an ended context turns unsaved answers into warnings", func(t *testing.T) {
		f := newFixture(t, abide)
		f.register(t, 1, abide.ID, 0)
		f.service.cfg.Outbox = OutboxConfig{MaxAttempts: 100, InitialDelay: time.Hour, MaxDelay: time.Hour}
		f.repo.FailRecordReview(fmt.Errorf("record review: %w", study.ErrPersistenceUnavailable))

		session, err := f.service.StartSession(context.Background(), 1, scheduling.Vocabulary)
		require.NoError(t, err)
		_, err = session.Answer(true)
		require.NoError(t, err)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err = session.Close(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Len(t, session.Status().Warnings, 1)
	})
}
