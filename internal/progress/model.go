// Package progress derives per-level completion summaries from study statuses.
package progress

import (
	"errors"
	"time"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/study"
)

var (
	// ErrAggregationFailure is returned when a snapshot could not be recomputed.
	// The stored snapshot stays as it was until the next successful recompute.
	ErrAggregationFailure = errors.New("level progress aggregation failed")
	// ErrLevelNotFound is returned for an unknown level.
	ErrLevelNotFound = errors.New("level not found")
)

// Key identifies the snapshot of a user in a level.
type Key struct {
	UserID  int64 `db:"user_id"`
	LevelID int64 `db:"level_id"`
}

// Snapshot is the derived progress of a user in a level.
// BoxLevelCounts[i] is the number of statuses at box level i+1.
type Snapshot struct {
	UserID         int64                       `json:"user_id"`
	LevelID        int64                       `json:"level_id"`
	TotalCount     int                         `json:"total_count"`
	BoxLevelCounts [scheduling.MaxBoxLevel]int `json:"box_level_counts"`
	IsCompleted    bool                        `json:"is_completed"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}

// Key returns the key of the snapshot.
func (s Snapshot) Key() Key {
	return Key{UserID: s.UserID, LevelID: s.LevelID}
}

// NewCount returns the number of statuses that were never studied.
func (s Snapshot) NewCount() int {
	n := s.TotalCount
	for _, c := range s.BoxLevelCounts {
		n -= c
	}
	return n
}

// Compute builds the snapshot of statuses.
// A level is completed when nothing is in box 1 or 2 and everything reached box 3 or higher.
// A level without statuses is never completed.
func Compute(userID, levelID int64, statuses []study.StudyStatus) Snapshot {
	snapshot := Snapshot{
		UserID:     userID,
		LevelID:    levelID,
		TotalCount: len(statuses),
	}
	for _, status := range statuses {
		if status.BoxLevel >= 1 && status.BoxLevel <= scheduling.MaxBoxLevel {
			snapshot.BoxLevelCounts[status.BoxLevel-1]++
		}
	}

	learning := snapshot.BoxLevelCounts[0] + snapshot.BoxLevelCounts[1]
	retained := 0
	for _, c := range snapshot.BoxLevelCounts[2:] {
		retained += c
	}
	snapshot.IsCompleted = snapshot.TotalCount > 0 && learning == 0 && retained == snapshot.TotalCount
	return snapshot
}

type snapshotRow struct {
	UserID      int64     `db:"user_id"`
	LevelID     int64     `db:"level_id"`
	TotalCount  int       `db:"total_count"`
	Box1Count   int       `db:"box1_count"`
	Box2Count   int       `db:"box2_count"`
	Box3Count   int       `db:"box3_count"`
	Box4Count   int       `db:"box4_count"`
	Box5Count   int       `db:"box5_count"`
	Box6Count   int       `db:"box6_count"`
	IsCompleted bool      `db:"is_completed"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r snapshotRow) toSnapshot() Snapshot {
	return Snapshot{
		UserID:      r.UserID,
		LevelID:     r.LevelID,
		TotalCount:  r.TotalCount,
		IsCompleted: r.IsCompleted,
		UpdatedAt:   r.UpdatedAt,
		BoxLevelCounts: [scheduling.MaxBoxLevel]int{
			r.Box1Count, r.Box2Count, r.Box3Count, r.Box4Count, r.Box5Count, r.Box6Count,
		},
	}
}
