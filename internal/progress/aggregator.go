package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// Aggregator recomputes level progress snapshots.
// Recomputes of one (user, level) never overlap; different keys run concurrently.
type Aggregator struct {
	studies     study.Repository
	levels      vocabulary.LevelRepository
	snapshots   Repository
	concurrency int
	locks       *keyedMutex
	now         func() time.Time
}

// NewAggregator creates a new Aggregator. concurrency bounds RecomputeAll.
func NewAggregator(studies study.Repository, levels vocabulary.LevelRepository, snapshots Repository, concurrency int) *Aggregator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Aggregator{
		studies:     studies,
		levels:      levels,
		snapshots:   snapshots,
		concurrency: concurrency,
		locks:       newKeyedMutex(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Recompute derives the snapshot of the user in the level from the current study statuses and stores it.
func (a *Aggregator) Recompute(ctx context.Context, userID, levelID int64) (Snapshot, error) {
	unlock := a.locks.Lock(Key{UserID: userID, LevelID: levelID})
	defer unlock()

	statuses, err := a.studies.ListLevelStatuses(ctx, userID, levelID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("recompute user %d level %d: %w: %w", userID, levelID, ErrAggregationFailure, err)
	}
	snapshot := Compute(userID, levelID, statuses)
	snapshot.UpdatedAt = a.now()

	stored, err := a.snapshots.Upsert(ctx, snapshot)
	if err != nil {
		return Snapshot{}, fmt.Errorf("recompute user %d level %d: %w: %w", userID, levelID, ErrAggregationFailure, err)
	}
	return stored, nil
}

// RecomputeSummary counts the outcome of RecomputeAll.
type RecomputeSummary struct {
	Succeeded int
	Failed    int
}

// RecomputeAll recomputes every snapshot that exists or has active statuses.
// A failure of one key is logged and does not stop the others.
func (a *Aggregator) RecomputeAll(ctx context.Context) (RecomputeSummary, error) {
	keys, err := a.listKeys(ctx)
	if err != nil {
		return RecomputeSummary{}, err
	}

	var succeeded, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			if _, err := a.Recompute(ctx, key.UserID, key.LevelID); err != nil {
				slog.Warn("level progress recompute failed",
					"user_id", key.UserID,
					"level_id", key.LevelID,
					"error", err,
				)
				failed.Add(1)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	summary := RecomputeSummary{Succeeded: int(succeeded.Load()), Failed: int(failed.Load())}
	slog.Info("level progress recomputed", "succeeded", summary.Succeeded, "failed", summary.Failed)
	return summary, ctx.Err()
}

func (a *Aggregator) listKeys(ctx context.Context) ([]Key, error) {
	pairs, err := a.studies.ListUserLevelPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregationFailure, err)
	}
	stored, err := a.snapshots.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAggregationFailure, err)
	}

	// Stored keys without active statuses are recomputed too so their counts drop to zero.
	seen := make(map[Key]bool, len(pairs)+len(stored))
	keys := make([]Key, 0, len(pairs)+len(stored))
	for _, pair := range pairs {
		key := Key{UserID: pair.UserID, LevelID: pair.LevelID}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for _, key := range stored {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// OnReviewRecorded recomputes every level containing the vocabulary for the user.
// Failures are only logged; the snapshots catch up on the next recompute.
func (a *Aggregator) OnReviewRecorded(ctx context.Context, userID, vocabularyID int64) {
	levelIDs, err := a.levels.FindLevelIDsByVocabulary(ctx, vocabularyID)
	if err != nil {
		slog.Warn("find levels of reviewed vocabulary",
			"user_id", userID,
			"vocabulary_id", vocabularyID,
			"error", err,
		)
		return
	}
	for _, levelID := range levelIDs {
		if _, err := a.Recompute(ctx, userID, levelID); err != nil {
			slog.Warn("level progress recompute failed",
				"user_id", userID,
				"level_id", levelID,
				"error", err,
			)
		}
	}
}

// Get returns the stored snapshot of the user in the level, computing it when it does not exist yet.
func (a *Aggregator) Get(ctx context.Context, userID, levelID int64) (Snapshot, error) {
	if userID <= 0 {
		return Snapshot{}, study.ErrNotAuthenticated
	}
	level, err := a.levels.FindLevel(ctx, levelID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get level progress: %w", err)
	}
	if level == nil {
		return Snapshot{}, fmt.Errorf("get level progress of level %d: %w", levelID, ErrLevelNotFound)
	}

	snapshot, err := a.snapshots.Find(ctx, userID, levelID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get level progress: %w", err)
	}
	if snapshot != nil {
		return *snapshot, nil
	}
	return a.Recompute(ctx, userID, levelID)
}

// keyedMutex serializes work per key and drops locks nobody holds or waits for.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[Key]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[Key]*keyLock)}
}

// Lock blocks until key is free and returns the function releasing it.
func (k *keyedMutex) Lock(key Key) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
