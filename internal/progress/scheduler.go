package progress

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs RecomputeAll periodically.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	aggregator *Aggregator
	interval   time.Duration
	timeout    time.Duration
}

// NewScheduler creates a scheduler running every interval.
// Each run is bounded by the interval so a slow run never outlives the next tick.
func NewScheduler(aggregator *Aggregator, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		aggregator: aggregator,
		interval:   interval,
		timeout:    interval,
	}
}

// Start schedules the recompute job and returns immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("recompute interval must be positive, got %s", s.interval)
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return fmt.Errorf("schedule level progress recompute: %w", err)
	}
	s.scheduler.StartAsync()
	slog.Info("level progress recompute scheduled", "interval", s.interval)
	return nil
}

// Stop stops scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.aggregator.RecomputeAll(ctx); err != nil {
		slog.Warn("scheduled level progress recompute", "error", err)
	}
}
