package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/avast/retry-go"

	"github.com/at-ishikawa/vocabox/internal/study"
)

// ReviewListener is told about every review that was saved.
type ReviewListener interface {
	OnReviewRecorded(ctx context.Context, userID, vocabularyID int64)
}

// OutboxConfig controls how answers are retried.
type OutboxConfig struct {
	MaxAttempts  uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Warning reports an answer that could not be saved.
// The session keeps going; only the stored box level misses this answer.
type Warning struct {
	VocabularyID int64     `json:"vocabulary_id"`
	Text         string    `json:"text"`
	IsCorrect    bool      `json:"is_correct"`
	AnsweredAt   time.Time `json:"answered_at"`
	Message      string    `json:"message"`
}

type reviewCommand struct {
	key        study.Key
	text       string
	isCorrect  bool
	answeredAt time.Time
}

// outbox saves answers in the order they were given on its own goroutine.
type outbox struct {
	repo     study.Repository
	listener ReviewListener
	cfg      OutboxConfig

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}

	mu       sync.Mutex
	queue    []reviewCommand
	inFlight bool
	closed   bool
	warnings []Warning
}

var errOutboxClosed = errors.New("outbox is closed")

func newOutbox(repo study.Repository, listener ReviewListener, cfg OutboxConfig) *outbox {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &outbox{
		repo:     repo,
		listener: listener,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *outbox) enqueue(cmd reviewCommand) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errOutboxClosed
	}
	o.queue = append(o.queue, cmd)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// pending returns the number of answers not saved or given up yet.
func (o *outbox) pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(o.queue)
	if o.inFlight {
		n++
	}
	return n
}

func (o *outbox) snapshotWarnings() []Warning {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Warning(nil), o.warnings...)
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		cmd, ok := o.next()
		if !ok {
			return
		}
		o.deliver(cmd)
	}
}

func (o *outbox) next() (reviewCommand, bool) {
	for {
		o.mu.Lock()
		o.inFlight = false
		if o.ctx.Err() != nil {
			o.mu.Unlock()
			return reviewCommand{}, false
		}
		if len(o.queue) > 0 {
			cmd := o.queue[0]
			o.queue = o.queue[1:]
			o.inFlight = true
			o.mu.Unlock()
			return cmd, true
		}
		closed := o.closed
		o.mu.Unlock()
		if closed {
			return reviewCommand{}, false
		}

		select {
		case <-o.wake:
		case <-o.ctx.Done():
			return reviewCommand{}, false
		}
	}
}

func (o *outbox) deliver(cmd reviewCommand) {
	var lastErr error
	err := retry.Do(
		func() error {
			_, err := o.repo.RecordReview(o.ctx, cmd.key, cmd.isCorrect, cmd.answeredAt)
			lastErr = err
			if err != nil && !study.IsRetryable(err) {
				return retry.Unrecoverable(err)
			}
			return err
		},
		retry.Context(o.ctx),
		retry.Attempts(o.cfg.MaxAttempts),
		retry.Delay(o.cfg.InitialDelay),
		retry.MaxDelay(o.cfg.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			slog.Debug("retry saving review",
				"attempt", n+1,
				"user_id", cmd.key.UserID,
				"vocabulary_id", cmd.key.VocabularyID,
				"error", err,
			)
		}),
	)
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		o.warn(cmd, lastErr)
		return
	}

	if o.listener != nil {
		o.listener.OnReviewRecorded(o.ctx, cmd.key.UserID, cmd.key.VocabularyID)
	}
}

func (o *outbox) warn(cmd reviewCommand, err error) {
	slog.Warn("review not saved",
		"user_id", cmd.key.UserID,
		"vocabulary_id", cmd.key.VocabularyID,
		"training_type", cmd.key.TrainingType,
		"is_correct", cmd.isCorrect,
		"error", err,
	)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.warnings = append(o.warnings, Warning{
		VocabularyID: cmd.key.VocabularyID,
		Text:         cmd.text,
		IsCorrect:    cmd.isCorrect,
		AnsweredAt:   cmd.answeredAt,
		Message:      fmt.Sprintf("answer to %q was not saved: %v", cmd.text, err),
	})
}

// close stops accepting answers and waits until the queued ones are saved.
// When ctx ends first, retries are aborted and the unsaved answers become warnings.
func (o *outbox) close(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}

	select {
	case <-o.done:
		o.cancel()
		return nil
	case <-ctx.Done():
	}

	o.cancel()
	<-o.done

	o.mu.Lock()
	dropped := o.queue
	o.queue = nil
	o.mu.Unlock()
	for _, cmd := range dropped {
		o.warn(cmd, ctx.Err())
	}
	return ctx.Err()
}
