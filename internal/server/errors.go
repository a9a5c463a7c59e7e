package server

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/vocabox/internal/progress"
	"github.com/at-ishikawa/vocabox/internal/session"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

var errSessionNotFound = errors.New("review session not found")

// toConnectError maps domain errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	return connect.NewError(codeOf(err), err)
}

func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, study.ErrNotAuthenticated):
		return connect.CodeUnauthenticated
	case errors.Is(err, study.ErrNotFound),
		errors.Is(err, vocabulary.ErrItemNotFound),
		errors.Is(err, progress.ErrLevelNotFound),
		errors.Is(err, errSessionNotFound):
		return connect.CodeNotFound
	case errors.Is(err, session.ErrInvalidTrainingType):
		return connect.CodeInvalidArgument
	case errors.Is(err, session.ErrSessionFinished),
		errors.Is(err, session.ErrInvalidTransition):
		return connect.CodeFailedPrecondition
	case errors.Is(err, study.ErrConcurrentModification):
		return connect.CodeAborted
	case errors.Is(err, study.ErrPersistenceUnavailable),
		errors.Is(err, progress.ErrAggregationFailure):
		return connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	default:
		return connect.CodeInternal
	}
}
