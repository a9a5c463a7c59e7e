// Package study stores the per-user scheduling state of vocabulary items
// and the append-only log of review answers.
package study

import (
	"time"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// Key identifies the scheduling record of one item for one user and training type.
type Key struct {
	UserID       int64
	VocabularyID int64
	TrainingType scheduling.TrainingType
}

// StudyStatus is the scheduling record of a Key.
// At most one row per Key is active; removal only sets DeleteFlag.
type StudyStatus struct {
	ID             int64                   `db:"id" json:"id"`
	UserID         int64                   `db:"user_id" json:"user_id"`
	VocabularyID   int64                   `db:"vocabulary_id" json:"vocabulary_id"`
	TrainingType   scheduling.TrainingType `db:"training_type" json:"training_type"`
	BoxLevel       int                     `db:"box_level" json:"box_level"`
	NextReviewDate *time.Time              `db:"next_review_date" json:"next_review_date,omitempty"`
	LastStudiedAt  *time.Time              `db:"last_studied_at" json:"last_studied_at,omitempty"`
	IsCompleted    bool                    `db:"is_completed" json:"is_completed"`
	DeleteFlag     bool                    `db:"delete_flag" json:"-"`
	CreatedAt      time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time               `db:"updated_at" json:"updated_at"`
}

// Key returns the key of the status.
func (s StudyStatus) Key() Key {
	return Key{UserID: s.UserID, VocabularyID: s.VocabularyID, TrainingType: s.TrainingType}
}

// IsDue reports whether the item must be reviewed at now.
func (s StudyStatus) IsDue(now time.Time) bool {
	return scheduling.IsDue(s.BoxLevel, s.NextReviewDate, now)
}

// HistoryEntry is one recorded answer. Entries are never updated or deleted.
type HistoryEntry struct {
	ID             int64                   `db:"id" json:"id"`
	StudyStatusID  int64                   `db:"study_status_id" json:"study_status_id"`
	UserID         int64                   `db:"user_id" json:"user_id"`
	VocabularyID   int64                   `db:"vocabulary_id" json:"vocabulary_id"`
	BeforeBoxLevel int                     `db:"before_box_level" json:"before_box_level"`
	AfterBoxLevel  int                     `db:"after_box_level" json:"after_box_level"`
	IsCorrect      bool                    `db:"is_correct" json:"is_correct"`
	TrainingType   scheduling.TrainingType `db:"training_type" json:"training_type"`
	CreatedAt      time.Time               `db:"created_at" json:"created_at"`
}

// ReviewResult is what RecordReview persisted.
type ReviewResult struct {
	BeforeBoxLevel int
	AfterBoxLevel  int
	NextReviewDate *time.Time
}

// UserLevel is a user that has active items in a level.
type UserLevel struct {
	UserID  int64 `db:"user_id"`
	LevelID int64 `db:"level_id"`
}

// DueItem is a due status joined with its vocabulary item.
type DueItem struct {
	Status StudyStatus
	Item   vocabulary.Item
}
