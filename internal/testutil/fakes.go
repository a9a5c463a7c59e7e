package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// StudyRepository is an in-memory study.Repository with the same semantics as the database one.
type StudyRepository struct {
	mu       sync.Mutex
	engine   *scheduling.Engine
	levels   vocabulary.LevelRepository
	nextID   int64
	statuses map[study.Key]*study.StudyStatus
	history  []study.HistoryEntry

	recordReviewErrors []error
	recordReviewCalls  int
}

var _ study.Repository = (*StudyRepository)(nil)

// NewStudyRepository creates an empty repository. levels resolves level membership and may be nil.
func NewStudyRepository(engine *scheduling.Engine, levels vocabulary.LevelRepository) *StudyRepository {
	return &StudyRepository{
		engine:   engine,
		levels:   levels,
		statuses: make(map[study.Key]*study.StudyStatus),
	}
}

// Put stores a copy of status, assigning an id when it has none.
func (r *StudyRepository) Put(status study.StudyStatus) study.StudyStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if status.ID == 0 {
		r.nextID++
		status.ID = r.nextID
	} else if status.ID > r.nextID {
		r.nextID = status.ID
	}
	stored := status
	r.statuses[status.Key()] = &stored
	return stored
}

// Status returns the stored row of key, deleted or not.
func (r *StudyRepository) Status(key study.Key) (study.StudyStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, ok := r.statuses[key]
	if !ok {
		return study.StudyStatus{}, false
	}
	return *status, true
}

// History returns every recorded answer.
func (r *StudyRepository) History() []study.HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// FailRecordReview makes the next RecordReview calls return errs in order.
// A nil entry lets that call through.
func (r *StudyRepository) FailRecordReview(errs ...error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recordReviewErrors = append(r.recordReviewErrors, errs...)
}

// RecordReviewCalls returns how many times RecordReview was called.
func (r *StudyRepository) RecordReviewCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordReviewCalls
}

// GetDueItems implements study.Repository.
func (r *StudyRepository) GetDueItems(_ context.Context, userID int64, trainingType scheduling.TrainingType, now time.Time, limit int) ([]study.StudyStatus, error) {
	if userID <= 0 {
		return nil, study.ErrNotAuthenticated
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []study.StudyStatus
	for _, status := range r.statuses {
		if status.UserID != userID || status.TrainingType != trainingType ||
			status.DeleteFlag || status.IsCompleted || !status.IsDue(now) {
			continue
		}
		due = append(due, *status)
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].NextReviewDate, due[j].NextReviewDate
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return due[i].ID < due[j].ID
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// EnsureRegistered implements study.Repository.
func (r *StudyRepository) EnsureRegistered(_ context.Context, key study.Key) (study.StudyStatus, error) {
	if key.UserID <= 0 {
		return study.StudyStatus{}, study.ErrNotAuthenticated
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if status, ok := r.statuses[key]; ok {
		status.DeleteFlag = false
		return *status, nil
	}
	r.nextID++
	status := &study.StudyStatus{
		ID:           r.nextID,
		UserID:       key.UserID,
		VocabularyID: key.VocabularyID,
		TrainingType: key.TrainingType,
	}
	r.statuses[key] = status
	return *status, nil
}

// RecordReview implements study.Repository.
func (r *StudyRepository) RecordReview(_ context.Context, key study.Key, isCorrect bool, now time.Time) (study.ReviewResult, error) {
	if key.UserID <= 0 {
		return study.ReviewResult{}, study.ErrNotAuthenticated
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recordReviewCalls++
	if len(r.recordReviewErrors) > 0 {
		err := r.recordReviewErrors[0]
		r.recordReviewErrors = r.recordReviewErrors[1:]
		if err != nil {
			return study.ReviewResult{}, err
		}
	}

	status, ok := r.statuses[key]
	if !ok || status.DeleteFlag {
		return study.ReviewResult{}, fmt.Errorf("record review: %w", study.ErrNotFound)
	}
	transition := r.engine.Transition(key.TrainingType, status.BoxLevel, isCorrect, now)
	status.BoxLevel = transition.AfterBoxLevel
	status.NextReviewDate = transition.NextReviewDate
	studiedAt := now
	status.LastStudiedAt = &studiedAt
	status.UpdatedAt = now

	r.history = append(r.history, study.HistoryEntry{
		ID:             int64(len(r.history) + 1),
		StudyStatusID:  status.ID,
		UserID:         key.UserID,
		VocabularyID:   key.VocabularyID,
		BeforeBoxLevel: transition.BeforeBoxLevel,
		AfterBoxLevel:  transition.AfterBoxLevel,
		IsCorrect:      isCorrect,
		TrainingType:   key.TrainingType,
		CreatedAt:      now,
	})
	return study.ReviewResult{
		BeforeBoxLevel: transition.BeforeBoxLevel,
		AfterBoxLevel:  transition.AfterBoxLevel,
		NextReviewDate: transition.NextReviewDate,
	}, nil
}

func (r *StudyRepository) active(key study.Key) (*study.StudyStatus, error) {
	if key.UserID <= 0 {
		return nil, study.ErrNotAuthenticated
	}
	status, ok := r.statuses[key]
	if !ok || status.DeleteFlag {
		return nil, study.ErrNotFound
	}
	return status, nil
}

// Unregister implements study.Repository.
func (r *StudyRepository) Unregister(_ context.Context, key study.Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, err := r.active(key)
	if err != nil {
		return err
	}
	status.DeleteFlag = true
	return nil
}

// MarkCompleted implements study.Repository.
func (r *StudyRepository) MarkCompleted(_ context.Context, key study.Key, completed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, err := r.active(key)
	if err != nil {
		return err
	}
	status.IsCompleted = completed
	return nil
}

// FindByKey implements study.Repository.
func (r *StudyRepository) FindByKey(_ context.Context, key study.Key) (study.StudyStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	status, err := r.active(key)
	if err != nil {
		return study.StudyStatus{}, err
	}
	return *status, nil
}

// ListHistory implements study.Repository.
func (r *StudyRepository) ListHistory(_ context.Context, key study.Key) ([]study.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var entries []study.HistoryEntry
	for _, entry := range r.history {
		if entry.UserID == key.UserID && entry.VocabularyID == key.VocabularyID && entry.TrainingType == key.TrainingType {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// ListLevelStatuses implements study.Repository.
func (r *StudyRepository) ListLevelStatuses(ctx context.Context, userID, levelID int64) ([]study.StudyStatus, error) {
	if r.levels == nil {
		return nil, errors.New("no level repository")
	}
	vocabularyIDs, err := r.levels.ListLevelVocabularyIDs(ctx, levelID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var statuses []study.StudyStatus
	for _, status := range r.statuses {
		if status.UserID == userID && !status.DeleteFlag && slices.Contains(vocabularyIDs, status.VocabularyID) {
			statuses = append(statuses, *status)
		}
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].ID < statuses[j].ID })
	return statuses, nil
}

// ListUserLevelPairs implements study.Repository.
func (r *StudyRepository) ListUserLevelPairs(ctx context.Context) ([]study.UserLevel, error) {
	if r.levels == nil {
		return nil, errors.New("no level repository")
	}
	levels, err := r.levels.ListLevels(ctx)
	if err != nil {
		return nil, err
	}

	var pairs []study.UserLevel
	for _, level := range levels {
		statuses := map[int64]bool{}
		vocabularyIDs, err := r.levels.ListLevelVocabularyIDs(ctx, level.ID)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		for _, status := range r.statuses {
			if !status.DeleteFlag && slices.Contains(vocabularyIDs, status.VocabularyID) {
				statuses[status.UserID] = true
			}
		}
		r.mu.Unlock()
		for userID := range statuses {
			pairs = append(pairs, study.UserLevel{UserID: userID, LevelID: level.ID})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].UserID != pairs[j].UserID {
			return pairs[i].UserID < pairs[j].UserID
		}
		return pairs[i].LevelID < pairs[j].LevelID
	})
	return pairs, nil
}

// VocabularyStore is an in-memory vocabulary.Store and vocabulary.LevelRepository.
type VocabularyStore struct {
	mu      sync.RWMutex
	items   map[int64]vocabulary.Item
	levels  []vocabulary.Level
	members map[int64][]int64
}

var (
	_ vocabulary.Store           = (*VocabularyStore)(nil)
	_ vocabulary.LevelRepository = (*VocabularyStore)(nil)
)

// NewVocabularyStore creates a store holding items.
func NewVocabularyStore(items ...vocabulary.Item) *VocabularyStore {
	s := &VocabularyStore{
		items:   make(map[int64]vocabulary.Item, len(items)),
		members: make(map[int64][]int64),
	}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

// AddLevel adds a level with its vocabulary.
func (s *VocabularyStore) AddLevel(level vocabulary.Level, vocabularyIDs ...int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, level)
	s.members[level.ID] = append(s.members[level.ID], vocabularyIDs...)
}

// GetItem implements vocabulary.Store.
func (s *VocabularyStore) GetItem(_ context.Context, id int64) (*vocabulary.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("get vocabulary %d: %w", id, vocabulary.ErrItemNotFound)
	}
	return &item, nil
}

// GetItems implements vocabulary.Store.
func (s *VocabularyStore) GetItems(_ context.Context, ids []int64) (map[int64]vocabulary.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make(map[int64]vocabulary.Item, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			items[id] = item
		}
	}
	return items, nil
}

// ListLevels implements vocabulary.LevelRepository.
func (s *VocabularyStore) ListLevels(context.Context) ([]vocabulary.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.levels), nil
}

// FindLevel implements vocabulary.LevelRepository.
func (s *VocabularyStore) FindLevel(_ context.Context, id int64) (*vocabulary.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, level := range s.levels {
		if level.ID == id {
			return &level, nil
		}
	}
	return nil, nil
}

// FindLevelIDsByVocabulary implements vocabulary.LevelRepository.
func (s *VocabularyStore) FindLevelIDsByVocabulary(_ context.Context, vocabularyID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []int64
	for _, level := range s.levels {
		if slices.Contains(s.members[level.ID], vocabularyID) {
			ids = append(ids, level.ID)
		}
	}
	return ids, nil
}

// ListLevelVocabularyIDs implements vocabulary.LevelRepository.
func (s *VocabularyStore) ListLevelVocabularyIDs(_ context.Context, levelID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.members[levelID]), nil
}
