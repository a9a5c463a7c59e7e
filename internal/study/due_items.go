package study

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// LoadDueItems returns the due statuses joined with their vocabulary items, in due order.
// Statuses whose item is missing from the store are skipped.
func LoadDueItems(
	ctx context.Context,
	repo Repository,
	store vocabulary.Store,
	userID int64,
	trainingType scheduling.TrainingType,
	now time.Time,
	limit int,
) ([]DueItem, error) {
	statuses, err := repo.GetDueItems(ctx, userID, trainingType, now, limit)
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(statuses))
	for _, status := range statuses {
		ids = append(ids, status.VocabularyID)
	}
	items, err := store.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary of due items: %w: %w", ErrPersistenceUnavailable, err)
	}

	dueItems := make([]DueItem, 0, len(statuses))
	for _, status := range statuses {
		item, ok := items[status.VocabularyID]
		if !ok {
			slog.Warn("skip due item without vocabulary",
				"user_id", userID,
				"vocabulary_id", status.VocabularyID,
				"study_status_id", status.ID,
			)
			continue
		}
		dueItems = append(dueItems, DueItem{Status: status, Item: item})
	}
	return dueItems, nil
}
