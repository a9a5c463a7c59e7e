package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/vocabox/internal/assets"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

// WriteReport renders the markdown progress report of the user from the stored snapshots.
// templatePath may be empty to use the embedded template.
func (a *Aggregator) WriteReport(ctx context.Context, output io.Writer, userID int64, templatePath string) error {
	levels, err := a.levels.ListLevels(ctx)
	if err != nil {
		return fmt.Errorf("write progress report: %w", err)
	}
	snapshots, err := a.snapshots.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("write progress report: %w", err)
	}
	data := reportData(userID, levels, snapshots)
	data.GeneratedAt = a.now()
	return assets.WriteProgressReport(output, templatePath, data)
}

// reportData lists the snapshots in level order. Levels never studied are left out.
func reportData(userID int64, levels []vocabulary.Level, snapshots []Snapshot) assets.ProgressReportTemplate {
	byLevel := make(map[int64]Snapshot, len(snapshots))
	for _, snapshot := range snapshots {
		byLevel[snapshot.LevelID] = snapshot
	}

	data := assets.ProgressReportTemplate{UserID: userID}
	for _, level := range levels {
		snapshot, ok := byLevel[level.ID]
		if !ok || snapshot.TotalCount == 0 {
			continue
		}
		data.Levels = append(data.Levels, assets.ProgressReportLevel{
			Name:           level.Name,
			TotalCount:     snapshot.TotalCount,
			NewCount:       snapshot.NewCount(),
			BoxLevelCounts: snapshot.BoxLevelCounts[:],
			IsCompleted:    snapshot.IsCompleted,
		})
	}
	return data
}
