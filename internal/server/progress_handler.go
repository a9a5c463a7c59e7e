package server

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/vocabox/internal/progress"
	"github.com/at-ishikawa/vocabox/internal/study"
)

const (
	ProgressServiceName = "vocabox.v1.ProgressService"

	GetLevelProgressProcedure = "/" + ProgressServiceName + "/GetLevelProgress"
)

// GetLevelProgressRequest selects a level of the authenticated user.
type GetLevelProgressRequest struct {
	LevelID int64 `json:"level_id"`
}

// GetLevelProgressResponse is the progress snapshot of the level.
type GetLevelProgressResponse struct {
	Progress progress.Snapshot `json:"progress"`
	NewCount int               `json:"new_count"`
}

// ProgressHandler serves level progress.
type ProgressHandler struct {
	aggregator *progress.Aggregator
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(aggregator *progress.Aggregator) *ProgressHandler {
	return &ProgressHandler{aggregator: aggregator}
}

// GetLevelProgress returns the progress of the user in a level.
func (h *ProgressHandler) GetLevelProgress(
	ctx context.Context,
	req *connect.Request[GetLevelProgressRequest],
) (*connect.Response[GetLevelProgressResponse], error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, toConnectError(study.ErrNotAuthenticated)
	}
	if req.Msg.LevelID <= 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("level_id is required"))
	}

	snapshot, err := h.aggregator.Get(ctx, userID, req.Msg.LevelID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&GetLevelProgressResponse{
		Progress: snapshot,
		NewCount: snapshot.NewCount(),
	}), nil
}
