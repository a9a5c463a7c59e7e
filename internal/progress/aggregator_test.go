package progress

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_study "github.com/at-ishikawa/vocabox/internal/mocks/study"
	mock_vocabulary "github.com/at-ishikawa/vocabox/internal/mocks/vocabulary"
	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/testutil"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// memoryRepository keeps snapshots in memory with the same completion rule as the database.
type memoryRepository struct {
	mu        sync.Mutex
	snapshots map[Key]Snapshot
	failFor   map[Key]error
	upserts   int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		snapshots: make(map[Key]Snapshot),
		failFor:   make(map[Key]error),
	}
}

func (r *memoryRepository) Find(_ context.Context, userID, levelID int64) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot, ok := r.snapshots[Key{UserID: userID, LevelID: levelID}]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *memoryRepository) Upsert(_ context.Context, snapshot Snapshot) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	if err := r.failFor[snapshot.Key()]; err != nil {
		return Snapshot{}, err
	}
	if stored, ok := r.snapshots[snapshot.Key()]; ok && stored.IsCompleted {
		snapshot.IsCompleted = true
	}
	r.snapshots[snapshot.Key()] = snapshot
	return snapshot, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID int64) ([]Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var snapshots []Snapshot
	for key, snapshot := range r.snapshots {
		if key.UserID == userID {
			snapshots = append(snapshots, snapshot)
		}
	}
	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].LevelID < snapshots[j].LevelID })
	return snapshots, nil
}

func (r *memoryRepository) ListKeys(context.Context) ([]Key, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]Key, 0, len(r.snapshots))
	for key := range r.snapshots {
		keys = append(keys, key)
	}
	return keys, nil
}

type aggregatorFixture struct {
	studies    *testutil.StudyRepository
	vocabulary *testutil.VocabularyStore
	snapshots  *memoryRepository
	aggregator *Aggregator
	now        time.Time
}

// newAggregatorFixture sets up level 1 with vocabulary 1..3 and level 2 with vocabulary 3..4.
func newAggregatorFixture(t *testing.T) *aggregatorFixture {
	t.Helper()
	engine, err := scheduling.NewEngine(nil)
	require.NoError(t, err)

	f := &aggregatorFixture{
		vocabulary: testutil.NewVocabularyStore(),
		snapshots:  newMemoryRepository(),
		now:        time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	f.vocabulary.AddLevel(vocabulary.Level{ID: 1, Name: "Basic", SortOrder: 1}, 1, 2, 3)
	f.vocabulary.AddLevel(vocabulary.Level{ID: 2, Name: "Intermediate", SortOrder: 2}, 3, 4)
	f.studies = testutil.NewStudyRepository(engine, f.vocabulary)
	f.aggregator = NewAggregator(f.studies, f.vocabulary, f.snapshots, 2)
	f.aggregator.now = func() time.Time { return f.now }
	return f
}

func (f *aggregatorFixture) put(userID, vocabularyID int64, boxLevel int) {
	f.studies.Put(study.StudyStatus{
		UserID:       userID,
		VocabularyID: vocabularyID,
		TrainingType: scheduling.Vocabulary,
		BoxLevel:     boxLevel,
	})
}

func TestAggregator_Recompute(t *testing.T) {
	f := newAggregatorFixture(t)
	f.put(1, 1, 3)
	f.put(1, 2, 4)
	f.put(1, 3, 1)
	f.put(2, 1, 6)

	got, err := f.aggregator.Recompute(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalCount)
	assert.Equal(t, [scheduling.MaxBoxLevel]int{1, 0, 1, 1, 0, 0}, got.BoxLevelCounts)
	assert.False(t, got.IsCompleted)
	assert.Equal(t, f.now, got.UpdatedAt)

	stored, err := f.snapshots.Find(context.Background(), 1, 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, got, *stored)
}

func TestAggregator_Recompute_CompletionIsKept(t *testing.T) {
	f := newAggregatorFixture(t)
	f.put(1, 1, 3)
	f.put(1, 2, 5)
	f.put(1, 3, 6)

	first, err := f.aggregator.Recompute(context.Background(), 1, 1)
	require.NoError(t, err)
	require.True(t, first.IsCompleted)

	again, err := f.aggregator.Recompute(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	// A wrong answer drops an item back to box 1.
	_, err = f.studies.RecordReview(context.Background(),
		study.Key{UserID: 1, VocabularyID: 2, TrainingType: scheduling.Vocabulary}, false, f.now)
	require.NoError(t, err)

	after, err := f.aggregator.Recompute(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, after.IsCompleted)
	assert.Equal(t, 1, after.BoxLevelCounts[0])
}

func TestAggregator_Recompute_Errors(t *testing.T) {
	t.Run("status read failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		studies := mock_study.NewMockRepository(ctrl)
		studies.EXPECT().ListLevelStatuses(gomock.Any(), int64(1), int64(2)).
			Return(nil, errors.New("connection refused"))
		snapshots := newMemoryRepository()

		aggregator := NewAggregator(studies, mock_vocabulary.NewMockLevelRepository(ctrl), snapshots, 1)
		_, err := aggregator.Recompute(context.Background(), 1, 2)
		assert.ErrorIs(t, err, ErrAggregationFailure)
		assert.Equal(t, 0, snapshots.upserts)
	})

	t.Run("write failure keeps the stored snapshot", func(t *testing.T) {
		f := newAggregatorFixture(t)
		f.put(1, 1, 2)
		previous, err := f.aggregator.Recompute(context.Background(), 1, 1)
		require.NoError(t, err)

		f.put(1, 2, 3)
		f.snapshots.failFor[Key{UserID: 1, LevelID: 1}] = errors.New("disk full")
		_, err = f.aggregator.Recompute(context.Background(), 1, 1)
		assert.ErrorIs(t, err, ErrAggregationFailure)

		stored, err := f.snapshots.Find(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, previous, *stored)
	})
}

func TestAggregator_RecomputeAll(t *testing.T) {
	f := newAggregatorFixture(t)
	f.put(1, 1, 3)
	f.put(1, 3, 2)
	f.put(2, 4, 1)
	// A stale snapshot whose statuses are gone.
	f.snapshots.snapshots[Key{UserID: 3, LevelID: 1}] = Snapshot{UserID: 3, LevelID: 1, TotalCount: 5}
	f.snapshots.failFor[Key{UserID: 2, LevelID: 2}] = errors.New("disk full")

	summary, err := f.aggregator.RecomputeAll(context.Background())
	require.NoError(t, err)
	// (1,1), (1,2), (3,1) succeed and (2,2) fails.
	assert.Equal(t, RecomputeSummary{Succeeded: 3, Failed: 1}, summary)

	snapshots, err := f.snapshots.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 2, snapshots[0].TotalCount)
	assert.Equal(t, 1, snapshots[1].TotalCount)

	stale, err := f.snapshots.Find(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stale.TotalCount)
}

func TestAggregator_RecomputeAll_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	studies := mock_study.NewMockRepository(ctrl)
	studies.EXPECT().ListUserLevelPairs(gomock.Any()).Return(nil, errors.New("connection refused"))

	aggregator := NewAggregator(studies, mock_vocabulary.NewMockLevelRepository(ctrl), newMemoryRepository(), 1)
	_, err := aggregator.RecomputeAll(context.Background())
	assert.ErrorIs(t, err, ErrAggregationFailure)
}

func TestAggregator_RecomputeAll_Canceled(t *testing.T) {
	f := newAggregatorFixture(t)
	f.put(1, 1, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := f.aggregator.RecomputeAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Succeeded)
}

func TestAggregator_OnReviewRecorded(t *testing.T) {
	f := newAggregatorFixture(t)
	f.put(1, 3, 2)

	f.aggregator.OnReviewRecorded(context.Background(), 1, 3)

	snapshots, err := f.snapshots.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, snapshots, 2, "vocabulary 3 belongs to both levels")
	for _, snapshot := range snapshots {
		assert.Equal(t, 1, snapshot.TotalCount)
		assert.Equal(t, 1, snapshot.BoxLevelCounts[1])
	}

	t.Run("unknown vocabulary updates nothing", func(t *testing.T) {
		upserts := f.snapshots.upserts
		f.aggregator.OnReviewRecorded(context.Background(), 1, 99)
		assert.Equal(t, upserts, f.snapshots.upserts)
	})
}

func TestAggregator_Get(t *testing.T) {
	t.Run("computes a missing snapshot", func(t *testing.T) {
		f := newAggregatorFixture(t)
		f.put(1, 1, 4)

		got, err := f.aggregator.Get(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, got.TotalCount)
		assert.Equal(t, 1, f.snapshots.upserts)
	})

	t.Run("returns the stored snapshot", func(t *testing.T) {
		f := newAggregatorFixture(t)
		stored := Snapshot{UserID: 1, LevelID: 1, TotalCount: 7, UpdatedAt: f.now.Add(-time.Hour)}
		f.snapshots.snapshots[stored.Key()] = stored

		got, err := f.aggregator.Get(context.Background(), 1, 1)
		require.NoError(t, err)
		assert.Equal(t, stored, got)
		assert.Equal(t, 0, f.snapshots.upserts)
	})

	t.Run("unknown level", func(t *testing.T) {
		f := newAggregatorFixture(t)
		_, err := f.aggregator.Get(context.Background(), 1, 42)
		assert.ErrorIs(t, err, ErrLevelNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		f := newAggregatorFixture(t)
		_, err := f.aggregator.Get(context.Background(), 0, 1)
		assert.ErrorIs(t, err, study.ErrNotAuthenticated)
	})
}

func TestKeyedMutex(t *testing.T) {
	locks := newKeyedMutex()
	key := Key{UserID: 1, LevelID: 1}

	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(key)
			defer unlock()
			n := running.Add(1)
			for {
				current := maxRunning.Load()
				if n <= current || maxRunning.CompareAndSwap(current, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			running.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.Empty(t, locks.locks)

	t.Run("different keys do not block each other", func(t *testing.T) {
		unlock := locks.Lock(Key{UserID: 1, LevelID: 1})
		defer unlock()
		done := make(chan struct{})
		go func() {
			locks.Lock(Key{UserID: 1, LevelID: 2})()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock of another key was blocked")
		}
	})
}
