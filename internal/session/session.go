package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// ErrInvalidTrainingType is returned when a session is started for an unknown training type.
var ErrInvalidTrainingType = errors.New("invalid training type")

// Config configures the sessions started by a Service.
type Config struct {
	// BatchSize caps the number of due items in one session.
	BatchSize int
	Outbox    OutboxConfig
}

// Service starts review sessions.
type Service struct {
	repo     study.Repository
	store    vocabulary.Store
	listener ReviewListener
	cfg      Config
	now      func() time.Time
}

// NewService creates a new Service. listener may be nil.
func NewService(repo study.Repository, store vocabulary.Store, listener ReviewListener, cfg Config) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		listener: listener,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// StartSession loads the due items of the user once and returns a session over them.
// A session without due items is returned in PhaseEmpty.
func (s *Service) StartSession(ctx context.Context, userID int64, trainingType scheduling.TrainingType) (*Session, error) {
	if userID <= 0 {
		return nil, study.ErrNotAuthenticated
	}
	if !trainingType.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrainingType, int(trainingType))
	}

	dueItems, err := study.LoadDueItems(ctx, s.repo, s.store, userID, trainingType, s.now(), s.cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	ids := make([]int64, 0, len(dueItems))
	items := make(map[int64]study.DueItem, len(dueItems))
	boxLevels := make(map[int64]int, len(dueItems))
	for _, dueItem := range dueItems {
		ids = append(ids, dueItem.Status.ID)
		items[dueItem.Status.ID] = dueItem
		boxLevels[dueItem.Status.ID] = dueItem.Status.BoxLevel
	}
	state, err := Transition(NewState(), Loaded{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}

	session := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		TrainingType: trainingType,
		state:        state,
		items:        items,
		boxLevels:    boxLevels,
		now:          s.now,
	}
	if !state.Phase.IsTerminal() {
		session.outbox = newOutbox(s.repo, s.listener, s.cfg.Outbox)
	}
	slog.Info("review session started",
		"session_id", session.ID,
		"user_id", userID,
		"training_type", trainingType,
		"items", len(ids),
	)
	return session, nil
}

// Session is one review session. It is safe for concurrent use.
type Session struct {
	ID           string
	UserID       int64
	TrainingType scheduling.TrainingType

	mu        sync.Mutex
	state     State
	items     map[int64]study.DueItem
	boxLevels map[int64]int
	outbox    *outbox
	now       func() time.Time
}

// Status summarizes a session.
type Status struct {
	Phase Phase `json:"phase"`
	// AnsweredCount counts every answer, including repeated ones.
	AnsweredCount int  `json:"answered_count"`
	CorrectCount  int  `json:"correct_count"`
	TotalCount    int  `json:"total_count"`
	IsCompleted   bool `json:"is_completed"`
	// Pending is the number of answers not saved yet.
	Pending  int       `json:"pending"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// AnswerResult is the outcome of Answer.
type AnswerResult struct {
	Status       Status
	VocabularyID int64
	// NewBoxLevel is the level the answer moves the item to. It is saved asynchronously.
	NewBoxLevel int
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentItem returns the item to present, or nil when the session is finished.
func (s *Session) CurrentItem() *vocabulary.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.Current()
	if !ok {
		return nil
	}
	item := s.items[id].Item
	return &item
}

// CurrentBoxLevel returns the box level of the current item as seen by this session.
func (s *Session) CurrentBoxLevel() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.state.Current()
	if !ok {
		return 0, false
	}
	return s.boxLevels[id], true
}

// Answer records the answer to the current item and moves on.
// It never waits for the answer to be saved.
func (s *Session) Answer(isCorrect bool) (AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.state.Current()
	next, err := Transition(s.state, Answered{IsCorrect: isCorrect})
	if err != nil {
		return AnswerResult{Status: s.statusLocked()}, err
	}
	if !ok {
		return AnswerResult{Status: s.statusLocked()}, ErrInvalidTransition
	}

	dueItem := s.items[id]
	newBoxLevel := scheduling.NextBoxLevel(s.boxLevels[id], isCorrect)
	if err := s.outbox.enqueue(reviewCommand{
		key:        dueItem.Status.Key(),
		text:       dueItem.Item.Text,
		isCorrect:  isCorrect,
		answeredAt: s.now(),
	}); err != nil {
		return AnswerResult{Status: s.statusLocked()}, fmt.Errorf("answer: %w", err)
	}
	s.boxLevels[id] = newBoxLevel
	s.state = next

	return AnswerResult{
		Status:       s.statusLocked(),
		VocabularyID: dueItem.Status.VocabularyID,
		NewBoxLevel:  newBoxLevel,
	}, nil
}

// Status returns the progress of the session and the answers that could not be saved.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	status := Status{
		Phase:         s.state.Phase,
		AnsweredCount: s.state.AnsweredCount,
		CorrectCount:  s.state.CorrectCount(),
		TotalCount:    len(s.state.Queue),
		IsCompleted:   s.state.Phase == PhaseCompleted,
	}
	if s.outbox != nil {
		status.Pending = s.outbox.pending()
		status.Warnings = s.outbox.snapshotWarnings()
	}
	return status
}

// Close stops the session and waits until the given answers are saved or ctx ends.
// Leaving a session early discards nothing that was already saved.
func (s *Session) Close(ctx context.Context) error {
	if s.outbox == nil {
		return nil
	}
	if err := s.outbox.close(ctx); err != nil {
		return fmt.Errorf("close session %s: %w", s.ID, err)
	}
	return nil
}
