package vocabulary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/vocabox/internal/database"
)

// ErrItemNotFound is returned when a vocabulary item does not exist.
var ErrItemNotFound = errors.New("vocabulary item not found")

//go:generate mockgen -source=repository.go -destination=../mocks/vocabulary/mock_repository.go -package=mock_vocabulary

// Store reads vocabulary reference data.
type Store interface {
	GetItem(ctx context.Context, id int64) (*Item, error)
	// GetItems returns the items found for ids keyed by id. Missing ids are absent from the map.
	GetItems(ctx context.Context, ids []int64) (map[int64]Item, error)
}

// LevelRepository reads levels and their membership.
type LevelRepository interface {
	ListLevels(ctx context.Context) ([]Level, error)
	FindLevel(ctx context.Context, id int64) (*Level, error)
	FindLevelIDsByVocabulary(ctx context.Context, vocabularyID int64) ([]int64, error)
	ListLevelVocabularyIDs(ctx context.Context, levelID int64) ([]int64, error)
}

// Writer stores vocabulary reference data. Only the importer writes.
type Writer interface {
	FindItemByText(ctx context.Context, text, partOfSpeech string) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	UpsertLevel(ctx context.Context, level Level) error
	LinkLevelVocabularies(ctx context.Context, levelID int64, vocabularyIDs []int64) error
}

const itemColumns = "id, text, part_of_speech, meanings, examples, synonyms, notes, created_at, updated_at"

// DBStore implements Store, LevelRepository and Writer on the vocabulary tables.
type DBStore struct {
	db *sqlx.DB
}

// NewDBStore creates a new DBStore.
func NewDBStore(db *sqlx.DB) *DBStore {
	return &DBStore{db: db}
}

// GetItem returns the item with the id, or ErrItemNotFound.
func (s *DBStore) GetItem(ctx context.Context, id int64) (*Item, error) {
	var item Item
	err := s.db.GetContext(ctx, &item,
		s.db.Rebind("SELECT "+itemColumns+" FROM vocabularies WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vocabulary %d: %w", id, ErrItemNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vocabulary %d: %w", id, err)
	}
	return &item, nil
}

// GetItems returns the items for the ids in one query.
func (s *DBStore) GetItems(ctx context.Context, ids []int64) (map[int64]Item, error) {
	result := make(map[int64]Item, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In("SELECT "+itemColumns+" FROM vocabularies WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build vocabularies query: %w", err)
	}
	var items []Item
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load vocabularies: %w", err)
	}
	for _, item := range items {
		result[item.ID] = item
	}
	return result, nil
}

// ListLevels returns all levels in display order.
func (s *DBStore) ListLevels(ctx context.Context) ([]Level, error) {
	var levels []Level
	if err := s.db.SelectContext(ctx, &levels,
		"SELECT id, name, sort_order, created_at, updated_at FROM levels ORDER BY sort_order, id"); err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	return levels, nil
}

// FindLevel returns the level with the id, or nil if not found.
func (s *DBStore) FindLevel(ctx context.Context, id int64) (*Level, error) {
	var level Level
	err := s.db.GetContext(ctx, &level,
		s.db.Rebind("SELECT id, name, sort_order, created_at, updated_at FROM levels WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get level %d: %w", id, err)
	}
	return &level, nil
}

// FindLevelIDsByVocabulary returns the levels that contain the vocabulary.
func (s *DBStore) FindLevelIDsByVocabulary(ctx context.Context, vocabularyID int64) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids,
		s.db.Rebind("SELECT level_id FROM level_vocabularies WHERE vocabulary_id = ? ORDER BY level_id"),
		vocabularyID); err != nil {
		return nil, fmt.Errorf("load levels of vocabulary %d: %w", vocabularyID, err)
	}
	return ids, nil
}

// ListLevelVocabularyIDs returns the vocabulary ids of a level.
func (s *DBStore) ListLevelVocabularyIDs(ctx context.Context, levelID int64) ([]int64, error) {
	var ids []int64
	if err := s.db.SelectContext(ctx, &ids,
		s.db.Rebind("SELECT vocabulary_id FROM level_vocabularies WHERE level_id = ? ORDER BY vocabulary_id"),
		levelID); err != nil {
		return nil, fmt.Errorf("load vocabularies of level %d: %w", levelID, err)
	}
	return ids, nil
}

// FindItemByText returns the item with the text and part of speech, or nil if not found.
func (s *DBStore) FindItemByText(ctx context.Context, text, partOfSpeech string) (*Item, error) {
	var item Item
	err := s.db.GetContext(ctx, &item,
		s.db.Rebind("SELECT "+itemColumns+" FROM vocabularies WHERE text = ? AND part_of_speech = ?"),
		text, partOfSpeech)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vocabulary %q: %w", text, err)
	}
	return &item, nil
}

// CreateItem inserts the item and sets its ID.
func (s *DBStore) CreateItem(ctx context.Context, item *Item) error {
	id, err := database.InsertReturningID(ctx, s.db,
		`INSERT INTO vocabularies (text, part_of_speech, meanings, examples, synonyms, notes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.Text, item.PartOfSpeech, item.Meanings, item.Examples, item.Synonyms, item.Notes)
	if err != nil {
		return fmt.Errorf("insert vocabulary %q: %w", item.Text, err)
	}
	item.ID = id
	return nil
}

// UpdateItem overwrites the descriptive fields of an existing item.
func (s *DBStore) UpdateItem(ctx context.Context, item *Item) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(
		`UPDATE vocabularies SET meanings = ?, examples = ?, synonyms = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`),
		item.Meanings, item.Examples, item.Synonyms, item.Notes, item.ID); err != nil {
		return fmt.Errorf("update vocabulary %d: %w", item.ID, err)
	}
	return nil
}

// UpsertLevel creates the level or renames it.
func (s *DBStore) UpsertLevel(ctx context.Context, level Level) error {
	dialect := database.DialectOf(s.db)
	query := "INSERT INTO levels (id, name, sort_order) VALUES (?, ?, ?)" +
		dialect.UpsertClause([]string{"id"}, []database.Assignment{database.Set("name"), database.Set("sort_order")})
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(query), level.ID, level.Name, level.SortOrder); err != nil {
		return fmt.Errorf("upsert level %d: %w", level.ID, err)
	}
	return nil
}

// LinkLevelVocabularies adds the vocabularies to the level. Existing links are kept.
func (s *DBStore) LinkLevelVocabularies(ctx context.Context, levelID int64, vocabularyIDs []int64) error {
	if len(vocabularyIDs) == 0 {
		return nil
	}
	dialect := database.DialectOf(s.db)
	return database.RunInTx(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		query := tx.Rebind("INSERT INTO level_vocabularies (level_id, vocabulary_id) VALUES (?, ?)" +
			dialect.UpsertClause([]string{"level_id", "vocabulary_id"}, []database.Assignment{database.Set("level_id")}))
		for _, vocabularyID := range vocabularyIDs {
			if _, err := tx.ExecContext(ctx, query, levelID, vocabularyID); err != nil {
				return fmt.Errorf("link vocabulary %d to level %d: %w", vocabularyID, levelID, err)
			}
		}
		return nil
	})
}
