package study

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/vocabox/internal/database"
	"github.com/at-ishikawa/vocabox/internal/scheduling"
)

//go:generate mockgen -source=repository.go -destination=../mocks/study/mock_repository.go -package=mock_study

// Repository persists study statuses and review history.
type Repository interface {
	// GetDueItems returns the active, not completed statuses that are due at now,
	// never-studied ones first, then by next review date. limit <= 0 means no limit.
	GetDueItems(ctx context.Context, userID int64, trainingType scheduling.TrainingType, now time.Time, limit int) ([]StudyStatus, error)
	// EnsureRegistered returns the active status of key, creating it or reviving a deleted one.
	EnsureRegistered(ctx context.Context, key Key) (StudyStatus, error)
	// RecordReview applies an answer and appends a history entry in one transaction.
	RecordReview(ctx context.Context, key Key, isCorrect bool, now time.Time) (ReviewResult, error)
	Unregister(ctx context.Context, key Key) error
	MarkCompleted(ctx context.Context, key Key, completed bool) error
	FindByKey(ctx context.Context, key Key) (StudyStatus, error)
	ListHistory(ctx context.Context, key Key) ([]HistoryEntry, error)
	// ListLevelStatuses returns the active statuses of every training type for the vocabulary of a level.
	ListLevelStatuses(ctx context.Context, userID, levelID int64) ([]StudyStatus, error)
	ListUserLevelPairs(ctx context.Context) ([]UserLevel, error)
}

const statusColumns = "id, user_id, vocabulary_id, training_type, box_level, next_review_date, last_studied_at, is_completed, delete_flag, created_at, updated_at"

// DBRepository implements Repository with sqlx.
type DBRepository struct {
	db     *sqlx.DB
	engine *scheduling.Engine
	now    func() time.Time
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB, engine *scheduling.Engine) *DBRepository {
	return &DBRepository{
		db:     db,
		engine: engine,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func validateKey(key Key) error {
	if key.UserID <= 0 {
		return ErrNotAuthenticated
	}
	if !key.TrainingType.IsValid() {
		return fmt.Errorf("invalid training type %d", int(key.TrainingType))
	}
	return nil
}

// GetDueItems implements Repository.
func (r *DBRepository) GetDueItems(ctx context.Context, userID int64, trainingType scheduling.TrainingType, now time.Time, limit int) ([]StudyStatus, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}

	query := "SELECT " + statusColumns + ` FROM study_statuses
		WHERE user_id = ? AND training_type = ? AND delete_flag = ? AND is_completed = ?
		AND (box_level = 0 OR next_review_date IS NULL OR next_review_date <= ?)
		ORDER BY CASE WHEN next_review_date IS NULL THEN 0 ELSE 1 END, next_review_date, id`
	args := []any{userID, trainingType, false, false, now}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var statuses []StudyStatus
	if err := r.db.SelectContext(ctx, &statuses, r.db.Rebind(query), args...); err != nil {
		return nil, wrapError("get due items", err)
	}
	return statuses, nil
}

// EnsureRegistered implements Repository.
// A unique violation means another request inserted the same key first; the lookup is retried once.
func (r *DBRepository) EnsureRegistered(ctx context.Context, key Key) (StudyStatus, error) {
	if err := validateKey(key); err != nil {
		return StudyStatus{}, err
	}

	status, err := r.ensureRegistered(ctx, key)
	if errors.Is(err, ErrConcurrentModification) {
		slog.Debug("retry registration after concurrent insert",
			"user_id", key.UserID,
			"vocabulary_id", key.VocabularyID,
			"training_type", key.TrainingType,
		)
		status, err = r.ensureRegistered(ctx, key)
	}
	return status, err
}

func (r *DBRepository) ensureRegistered(ctx context.Context, key Key) (StudyStatus, error) {
	dialect := database.DialectOf(r.db)
	var status StudyStatus
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &status, tx.Rebind("SELECT "+statusColumns+
			" FROM study_statuses WHERE user_id = ? AND vocabulary_id = ? AND training_type = ?"+dialect.LockingRead()),
			key.UserID, key.VocabularyID, key.TrainingType)
		if errors.Is(err, sql.ErrNoRows) {
			now := r.now()
			id, err := database.InsertReturningID(ctx, tx,
				`INSERT INTO study_statuses
				(user_id, vocabulary_id, training_type, box_level, is_completed, delete_flag, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				key.UserID, key.VocabularyID, key.TrainingType, scheduling.MinBoxLevel, false, false, now, now)
			if err != nil {
				return fmt.Errorf("insert study status: %w", err)
			}
			status = StudyStatus{
				ID:           id,
				UserID:       key.UserID,
				VocabularyID: key.VocabularyID,
				TrainingType: key.TrainingType,
				BoxLevel:     scheduling.MinBoxLevel,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("select study status: %w", err)
		}
		if !status.DeleteFlag {
			return nil
		}

		// Revived rows keep their box level and history.
		now := r.now()
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			"UPDATE study_statuses SET delete_flag = ?, updated_at = ? WHERE id = ?"),
			false, now, status.ID); err != nil {
			return fmt.Errorf("revive study status %d: %w", status.ID, err)
		}
		status.DeleteFlag = false
		status.UpdatedAt = now
		return nil
	})
	if err != nil {
		return StudyStatus{}, wrapError("ensure registered", err)
	}
	return status, nil
}

// RecordReview implements Repository.
func (r *DBRepository) RecordReview(ctx context.Context, key Key, isCorrect bool, now time.Time) (ReviewResult, error) {
	if err := validateKey(key); err != nil {
		return ReviewResult{}, err
	}

	dialect := database.DialectOf(r.db)
	var result ReviewResult
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		var status StudyStatus
		if err := tx.GetContext(ctx, &status, tx.Rebind("SELECT "+statusColumns+
			" FROM study_statuses WHERE user_id = ? AND vocabulary_id = ? AND training_type = ? AND delete_flag = ?"+dialect.LockingRead()),
			key.UserID, key.VocabularyID, key.TrainingType, false); err != nil {
			return fmt.Errorf("select study status: %w", err)
		}

		transition := r.engine.Transition(key.TrainingType, status.BoxLevel, isCorrect, now)
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`UPDATE study_statuses SET box_level = ?, next_review_date = ?, last_studied_at = ?, updated_at = ?
			WHERE id = ?`),
			transition.AfterBoxLevel, transition.NextReviewDate, now, now, status.ID); err != nil {
			return fmt.Errorf("update study status %d: %w", status.ID, err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO study_histories
			(study_status_id, user_id, vocabulary_id, before_box_level, after_box_level, is_correct, training_type, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			status.ID, key.UserID, key.VocabularyID, transition.BeforeBoxLevel, transition.AfterBoxLevel,
			isCorrect, key.TrainingType, now); err != nil {
			return fmt.Errorf("insert study history: %w", err)
		}

		result = ReviewResult{
			BeforeBoxLevel: transition.BeforeBoxLevel,
			AfterBoxLevel:  transition.AfterBoxLevel,
			NextReviewDate: transition.NextReviewDate,
		}
		return nil
	})
	if err != nil {
		return ReviewResult{}, wrapError("record review", err)
	}
	return result, nil
}

// Unregister soft-deletes the active status of key. Its history is kept.
func (r *DBRepository) Unregister(ctx context.Context, key Key) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return r.updateActive(ctx, "unregister", key, "delete_flag = ?", true)
}

// MarkCompleted sets the completion flag of the active status of key.
// Completed items are no longer returned as due.
func (r *DBRepository) MarkCompleted(ctx context.Context, key Key, completed bool) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return r.updateActive(ctx, "mark completed", key, "is_completed = ?", completed)
}

func (r *DBRepository) updateActive(ctx context.Context, op string, key Key, assignment string, value any) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE study_statuses SET "+assignment+", updated_at = ? "+
			"WHERE user_id = ? AND vocabulary_id = ? AND training_type = ? AND delete_flag = ?"),
		value, r.now(), key.UserID, key.VocabularyID, key.TrainingType, false)
	if err != nil {
		return wrapError(op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return wrapError(op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// FindByKey returns the active status of key.
func (r *DBRepository) FindByKey(ctx context.Context, key Key) (StudyStatus, error) {
	if err := validateKey(key); err != nil {
		return StudyStatus{}, err
	}
	var status StudyStatus
	if err := r.db.GetContext(ctx, &status, r.db.Rebind("SELECT "+statusColumns+
		" FROM study_statuses WHERE user_id = ? AND vocabulary_id = ? AND training_type = ? AND delete_flag = ?"),
		key.UserID, key.VocabularyID, key.TrainingType, false); err != nil {
		return StudyStatus{}, wrapError("find study status", err)
	}
	return status, nil
}

// ListHistory returns the answers recorded for key, oldest first.
// History of a deleted status is still returned.
func (r *DBRepository) ListHistory(ctx context.Context, key Key) ([]HistoryEntry, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var entries []HistoryEntry
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(
		`SELECT id, study_status_id, user_id, vocabulary_id, before_box_level, after_box_level, is_correct, training_type, created_at
		FROM study_histories
		WHERE user_id = ? AND vocabulary_id = ? AND training_type = ?
		ORDER BY created_at, id`),
		key.UserID, key.VocabularyID, key.TrainingType); err != nil {
		return nil, wrapError("list study history", err)
	}
	return entries, nil
}

// ListLevelStatuses implements Repository.
func (r *DBRepository) ListLevelStatuses(ctx context.Context, userID, levelID int64) ([]StudyStatus, error) {
	if userID <= 0 {
		return nil, ErrNotAuthenticated
	}
	var statuses []StudyStatus
	if err := r.db.SelectContext(ctx, &statuses, r.db.Rebind(
		`SELECT s.id, s.user_id, s.vocabulary_id, s.training_type, s.box_level, s.next_review_date,
		s.last_studied_at, s.is_completed, s.delete_flag, s.created_at, s.updated_at
		FROM study_statuses s
		JOIN level_vocabularies lv ON lv.vocabulary_id = s.vocabulary_id
		WHERE s.user_id = ? AND lv.level_id = ? AND s.delete_flag = ?
		ORDER BY s.id`),
		userID, levelID, false); err != nil {
		return nil, wrapError("list level statuses", err)
	}
	return statuses, nil
}

// ListUserLevelPairs returns every (user, level) pair with at least one active status.
func (r *DBRepository) ListUserLevelPairs(ctx context.Context) ([]UserLevel, error) {
	var pairs []UserLevel
	if err := r.db.SelectContext(ctx, &pairs, r.db.Rebind(
		`SELECT DISTINCT s.user_id, lv.level_id
		FROM study_statuses s
		JOIN level_vocabularies lv ON lv.vocabulary_id = s.vocabulary_id
		WHERE s.delete_flag = ?
		ORDER BY s.user_id, lv.level_id`),
		false); err != nil {
		return nil, wrapError("list user levels", err)
	}
	return pairs, nil
}
