package study

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/vocabox/internal/config"
	"github.com/at-ishikawa/vocabox/internal/database"
	"github.com/at-ishikawa/vocabox/internal/scheduling"
)

func newSQLiteRepository(t *testing.T) *DBRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "vocabox.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db, database.MigrateUp))

	engine, err := scheduling.NewEngine(nil)
	require.NoError(t, err)
	repo := NewDBRepository(db, engine)
	repo.now = func() time.Time { return testNow }
	return repo
}

func TestDBRepository_GetDueItems_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	key := func(userID, vocabularyID int64, trainingType scheduling.TrainingType) Key {
		return Key{UserID: userID, VocabularyID: vocabularyID, TrainingType: trainingType}
	}
	register := func(k Key) {
		t.Helper()
		_, err := repo.EnsureRegistered(ctx, k)
		require.NoError(t, err)
	}
	review := func(k Key, at time.Time) {
		t.Helper()
		_, err := repo.RecordReview(ctx, k, true, at)
		require.NoError(t, err)
	}

	neverStudied := key(1, 1, scheduling.Vocabulary)
	dueTwoDaysAgo := key(1, 2, scheduling.Vocabulary)
	dueNineDaysAgo := key(1, 3, scheduling.Vocabulary)
	dueTomorrow := key(1, 4, scheduling.Vocabulary)
	completed := key(1, 5, scheduling.Vocabulary)
	unregistered := key(1, 6, scheduling.Vocabulary)
	otherUser := key(2, 1, scheduling.Vocabulary)
	otherTrainingType := key(1, 1, scheduling.Sentence)
	for _, k := range []Key{neverStudied, dueTwoDaysAgo, dueNineDaysAgo, dueTomorrow, completed, unregistered, otherUser, otherTrainingType} {
		register(k)
	}
	review(dueTwoDaysAgo, testNow.Add(-3*24*time.Hour))
	review(dueNineDaysAgo, testNow.Add(-10*24*time.Hour))
	review(dueTomorrow, testNow)
	require.NoError(t, repo.MarkCompleted(ctx, completed, true))
	require.NoError(t, repo.Unregister(ctx, unregistered))

	due, err := repo.GetDueItems(ctx, 1, scheduling.Vocabulary, testNow, 0)
	require.NoError(t, err)
	var got []int64
	for _, status := range due {
		got = append(got, status.VocabularyID)
	}
	assert.Equal(t, []int64{1, 3, 2}, got, "never studied first, then by next review date")
	assert.Nil(t, due[0].NextReviewDate)
	require.NotNil(t, due[2].NextReviewDate)
	assert.True(t, due[2].NextReviewDate.Equal(testNow.Add(-2*24*time.Hour)), "got %s", due[2].NextReviewDate)
	assert.Equal(t, 1, due[2].BoxLevel)

	limited, err := repo.GetDueItems(ctx, 1, scheduling.Vocabulary, testNow, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(3), limited[1].VocabularyID)

	later, err := repo.GetDueItems(ctx, 1, scheduling.Vocabulary, testNow.Add(2*24*time.Hour), 0)
	require.NoError(t, err)
	assert.Len(t, later, 4, "the item reviewed today is due after its interval")

	history, err := repo.ListHistory(ctx, dueTwoDaysAgo)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 0, history[0].BeforeBoxLevel)
	assert.Equal(t, 1, history[0].AfterBoxLevel)

	revived, err := repo.EnsureRegistered(ctx, unregistered)
	require.NoError(t, err)
	assert.False(t, revived.DeleteFlag)
	due, err = repo.GetDueItems(ctx, 1, scheduling.Vocabulary, testNow, 0)
	require.NoError(t, err)
	assert.Len(t, due, 4, "a revived item is due again")
}
