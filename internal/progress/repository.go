package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/vocabox/internal/database"
)

// Repository stores level progress snapshots.
type Repository interface {
	// Find returns the snapshot, or nil if it was never computed.
	Find(ctx context.Context, userID, levelID int64) (*Snapshot, error)
	// Upsert writes the counts and returns the stored snapshot.
	// A stored completion flag is never cleared.
	Upsert(ctx context.Context, snapshot Snapshot) (Snapshot, error)
	ListByUser(ctx context.Context, userID int64) ([]Snapshot, error)
	ListKeys(ctx context.Context) ([]Key, error)
}

const snapshotColumns = "user_id, level_id, total_count, box1_count, box2_count, box3_count, box4_count, box5_count, box6_count, is_completed, updated_at"

// DBRepository implements Repository on the level_progresses table.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// Find implements Repository.
func (r *DBRepository) Find(ctx context.Context, userID, levelID int64) (*Snapshot, error) {
	return find(ctx, r.db, userID, levelID)
}

func find(ctx context.Context, q sqlx.ExtContext, userID, levelID int64) (*Snapshot, error) {
	var row snapshotRow
	err := sqlx.GetContext(ctx, q, &row, q.Rebind(
		"SELECT "+snapshotColumns+" FROM level_progresses WHERE user_id = ? AND level_id = ?"),
		userID, levelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get level progress of user %d in level %d: %w", userID, levelID, err)
	}
	snapshot := row.toSnapshot()
	return &snapshot, nil
}

// Upsert implements Repository.
func (r *DBRepository) Upsert(ctx context.Context, snapshot Snapshot) (Snapshot, error) {
	dialect := database.DialectOf(r.db)
	query := "INSERT INTO level_progresses (" + snapshotColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)" +
		dialect.UpsertClause([]string{"user_id", "level_id"}, []database.Assignment{
			database.Set("total_count"),
			database.Set("box1_count"),
			database.Set("box2_count"),
			database.Set("box3_count"),
			database.Set("box4_count"),
			database.Set("box5_count"),
			database.Set("box6_count"),
			{Column: "is_completed", Expression: "level_progresses.is_completed OR {new}"},
			database.Set("updated_at"),
		})
	counts := snapshot.BoxLevelCounts

	var stored *Snapshot
	err := database.RunInTx(ctx, r.db, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(query),
			snapshot.UserID, snapshot.LevelID, snapshot.TotalCount,
			counts[0], counts[1], counts[2], counts[3], counts[4], counts[5],
			snapshot.IsCompleted, snapshot.UpdatedAt); err != nil {
			return fmt.Errorf("upsert level progress: %w", err)
		}
		var err error
		stored, err = find(ctx, tx, snapshot.UserID, snapshot.LevelID)
		return err
	})
	if err != nil {
		return Snapshot{}, err
	}
	if stored == nil {
		return Snapshot{}, fmt.Errorf("level progress of user %d in level %d missing after upsert", snapshot.UserID, snapshot.LevelID)
	}
	return *stored, nil
}

// ListByUser returns every snapshot of the user ordered by level.
func (r *DBRepository) ListByUser(ctx context.Context, userID int64) ([]Snapshot, error) {
	var rows []snapshotRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(
		"SELECT "+snapshotColumns+" FROM level_progresses WHERE user_id = ? ORDER BY level_id"), userID); err != nil {
		return nil, fmt.Errorf("list level progresses of user %d: %w", userID, err)
	}
	snapshots := make([]Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, row.toSnapshot())
	}
	return snapshots, nil
}

// ListKeys returns the keys of every stored snapshot.
func (r *DBRepository) ListKeys(ctx context.Context) ([]Key, error) {
	var keys []Key
	if err := r.db.SelectContext(ctx, &keys,
		"SELECT user_id, level_id FROM level_progresses ORDER BY user_id, level_id"); err != nil {
		return nil, fmt.Errorf("list level progress keys: %w", err)
	}
	return keys, nil
}
