package study

import (
	"context"
	"fmt"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// RegisterLevel makes every vocabulary of the level studyable by the user for the training type.
// Items already registered keep their box level. It returns the number of items in the level.
func RegisterLevel(
	ctx context.Context,
	repo Repository,
	levels vocabulary.LevelRepository,
	userID, levelID int64,
	trainingType scheduling.TrainingType,
) (int, error) {
	if userID <= 0 {
		return 0, ErrNotAuthenticated
	}
	level, err := levels.FindLevel(ctx, levelID)
	if err != nil {
		return 0, fmt.Errorf("register level %d: %w", levelID, err)
	}
	if level == nil {
		return 0, fmt.Errorf("register level %d: %w", levelID, ErrNotFound)
	}

	vocabularyIDs, err := levels.ListLevelVocabularyIDs(ctx, levelID)
	if err != nil {
		return 0, fmt.Errorf("register level %d: %w", levelID, err)
	}
	for _, vocabularyID := range vocabularyIDs {
		if _, err := repo.EnsureRegistered(ctx, Key{
			UserID:       userID,
			VocabularyID: vocabularyID,
			TrainingType: trainingType,
		}); err != nil {
			return 0, fmt.Errorf("register vocabulary %d of level %d: %w", vocabularyID, levelID, err)
		}
	}
	return len(vocabularyIDs), nil
}
