// Package scheduling implements the Leitner box transitions and due-date calculation.
// Everything here is pure: no I/O, and the current time is always passed in.
package scheduling

import (
	"fmt"
	"time"
)

const (
	// MinBoxLevel is the level of an item that was never studied.
	MinBoxLevel = 0
	// MaxBoxLevel is the highest retention tier.
	MaxBoxLevel = 6

	day = 24 * time.Hour
)

// NextBoxLevel returns the box level after an answer.
// A correct answer moves one level up, capped at MaxBoxLevel.
// A wrong answer resets to level 1, not 0, so a failed item stays distinct from a new one.
func NextBoxLevel(current int, isCorrect bool) int {
	current = clamp(current)
	if !isCorrect {
		return 1
	}
	return min(current+1, MaxBoxLevel)
}

// IsDue reports whether an item with the box level and next review date must be reviewed at now.
func IsDue(boxLevel int, nextReviewDate *time.Time, now time.Time) bool {
	if boxLevel <= MinBoxLevel || nextReviewDate == nil {
		return true
	}
	return !nextReviewDate.After(now)
}

func clamp(level int) int {
	return max(MinBoxLevel, min(level, MaxBoxLevel))
}

// IntervalTable holds the retention interval for box levels 1..6 at index 0..5.
type IntervalTable [MaxBoxLevel]time.Duration

// Interval returns the interval for a box level. Level 0 has no interval.
func (t IntervalTable) Interval(boxLevel int) time.Duration {
	boxLevel = clamp(boxLevel)
	if boxLevel == MinBoxLevel {
		return 0
	}
	return t[boxLevel-1]
}

// Validate checks that every interval is positive and strictly longer than the previous one.
func (t IntervalTable) Validate() error {
	var prev time.Duration
	for i, d := range t {
		if d <= prev {
			return fmt.Errorf("interval of box level %d must be longer than %s, got %s", i+1, prev, d)
		}
		prev = d
	}
	return nil
}

// IntervalTableFromDays builds a table from six day counts.
func IntervalTableFromDays(days []int) (IntervalTable, error) {
	var table IntervalTable
	if len(days) != len(table) {
		return table, fmt.Errorf("interval table needs %d entries, got %d", len(table), len(days))
	}
	for i, d := range days {
		table[i] = time.Duration(d) * day
	}
	if err := table.Validate(); err != nil {
		return IntervalTable{}, err
	}
	return table, nil
}

func mustDays(days ...int) IntervalTable {
	table, err := IntervalTableFromDays(days)
	if err != nil {
		panic(err)
	}
	return table
}

// DefaultTables returns the built-in interval table of each training type.
func DefaultTables() map[TrainingType]IntervalTable {
	return map[TrainingType]IntervalTable{
		Vocabulary:  mustDays(1, 2, 4, 8, 16, 32),
		Sentence:    mustDays(1, 3, 7, 14, 30, 60),
		Translation: mustDays(1, 2, 5, 10, 20, 40),
		Listening:   mustDays(1, 2, 4, 8, 16, 32),
	}
}

// Transition is the outcome of one answer.
type Transition struct {
	BeforeBoxLevel int
	AfterBoxLevel  int
	// NextReviewDate is nil when the item is due immediately.
	NextReviewDate *time.Time
}

// Engine computes transitions with per-training-type interval tables.
type Engine struct {
	tables map[TrainingType]IntervalTable
}

// NewEngine creates an engine from the default tables, replacing the ones named in overrides.
// overrides maps a training type name to six day counts, as in the configuration file.
func NewEngine(overrides map[string][]int) (*Engine, error) {
	tables := DefaultTables()
	for name, days := range overrides {
		trainingType, err := ParseTrainingType(name)
		if err != nil {
			return nil, fmt.Errorf("scheduling interval override: %w", err)
		}
		table, err := IntervalTableFromDays(days)
		if err != nil {
			return nil, fmt.Errorf("scheduling interval override for %s: %w", trainingType, err)
		}
		tables[trainingType] = table
	}
	return &Engine{tables: tables}, nil
}

// Table returns the interval table used for the training type.
func (e *Engine) Table(trainingType TrainingType) IntervalTable {
	if table, ok := e.tables[trainingType]; ok {
		return table
	}
	return e.tables[Vocabulary]
}

// NextDueDate returns when an item at newBoxLevel is due again.
// The zero time is returned for level 0, which is always due.
func (e *Engine) NextDueDate(trainingType TrainingType, newBoxLevel int, now time.Time) time.Time {
	interval := e.Table(trainingType).Interval(newBoxLevel)
	if interval == 0 {
		return time.Time{}
	}
	return now.Add(interval)
}

// Transition applies an answer to an item at the current box level.
func (e *Engine) Transition(trainingType TrainingType, current int, isCorrect bool, now time.Time) Transition {
	after := NextBoxLevel(current, isCorrect)
	t := Transition{
		BeforeBoxLevel: current,
		AfterBoxLevel:  after,
	}
	if due := e.NextDueDate(trainingType, after, now); !due.IsZero() {
		t.NextReviewDate = &due
	}
	return t
}
