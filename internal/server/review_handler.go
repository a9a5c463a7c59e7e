// Package server provides the Connect RPC handlers of the review and progress services.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/vocabox/internal/scheduling"
	"github.com/at-ishikawa/vocabox/internal/session"
	"github.com/at-ishikawa/vocabox/internal/study"
	"github.com/at-ishikawa/vocabox/internal/vocabulary"
)

const (
	ReviewServiceName = "vocabox.v1.ReviewService"

	StartSessionProcedure   = "/" + ReviewServiceName + "/StartSession"
	CurrentItemProcedure    = "/" + ReviewServiceName + "/CurrentItem"
	AnswerProcedure         = "/" + ReviewServiceName + "/Answer"
	SessionStatusProcedure  = "/" + ReviewServiceName + "/SessionStatus"
	EndSessionProcedure     = "/" + ReviewServiceName + "/EndSession"
	RegisterItemProcedure   = "/" + ReviewServiceName + "/RegisterItem"
	UnregisterItemProcedure = "/" + ReviewServiceName + "/UnregisterItem"
	SetCompletedProcedure   = "/" + ReviewServiceName + "/SetCompleted"
	ListHistoryProcedure    = "/" + ReviewServiceName + "/ListHistory"
)

// StartSessionRequest is the body of StartSession.
type StartSessionRequest struct {
	TrainingType scheduling.TrainingType `json:"training_type"`
}

// StartSessionResponse describes the started session and its first item.
type StartSessionResponse struct {
	SessionID string           `json:"session_id"`
	Status    session.Status   `json:"status"`
	Item      *vocabulary.Item `json:"item,omitempty"`
	BoxLevel  int              `json:"box_level"`
}

// SessionRequest identifies an open session.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// CurrentItemResponse is the item to answer next.
type CurrentItemResponse struct {
	// Item is absent when the session is finished.
	Item     *vocabulary.Item `json:"item,omitempty"`
	BoxLevel int              `json:"box_level"`
}

// AnswerRequest grades the current item of a session.
type AnswerRequest struct {
	SessionID string `json:"session_id"`
	IsCorrect bool   `json:"is_correct"`
}

// AnswerResponse is the outcome of an answer and the next item.
type AnswerResponse struct {
	Status       session.Status   `json:"status"`
	VocabularyID int64            `json:"vocabulary_id"`
	NewBoxLevel  int              `json:"new_box_level"`
	NextItem     *vocabulary.Item `json:"next_item,omitempty"`
}

// SessionStatusResponse reports the phase and counters of a session.
type SessionStatusResponse struct {
	Status session.Status `json:"status"`
}

// EndSessionResponse summarizes a closed session.
type EndSessionResponse struct {
	Status session.Status `json:"status"`
}

// ItemRequest identifies a vocabulary item of a user for a training type.
type ItemRequest struct {
	VocabularyID int64                   `json:"vocabulary_id"`
	TrainingType scheduling.TrainingType `json:"training_type"`
}

// RegisterItemResponse is the study status of the registered item.
type RegisterItemResponse struct {
	Status study.StudyStatus `json:"status"`
}

// UnregisterItemResponse is empty.
type UnregisterItemResponse struct{}

// SetCompletedRequest sets or clears the completion flag of an item.
type SetCompletedRequest struct {
	ItemRequest
	IsCompleted bool `json:"is_completed"`
}

// SetCompletedResponse is the study status after the change.
type SetCompletedResponse struct {
	Status study.StudyStatus `json:"status"`
}

// ListHistoryResponse lists the recorded answers of an item.
type ListHistoryResponse struct {
	// Entries are the recorded answers, oldest first.
	Entries []study.HistoryEntry `json:"entries"`
}

// replacedSessionCloseTimeout bounds how long starting a session waits for the answers of the one it replaces.
const replacedSessionCloseTimeout = 10 * time.Second

// sessionOwner identifies the single open session a user may have per training type.
type sessionOwner struct {
	userID       int64
	trainingType scheduling.TrainingType
}

// ReviewHandler serves review sessions. Sessions live in memory and belong to the user who started them.
// A user has at most one open session per training type; starting another one closes it.
type ReviewHandler struct {
	sessions *session.Service
	studies  study.Repository
	store    vocabulary.Store

	mu     sync.Mutex
	active map[string]*session.Session
	owners map[sessionOwner]string
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(sessions *session.Service, studies study.Repository, store vocabulary.Store) *ReviewHandler {
	return &ReviewHandler{
		sessions: sessions,
		studies:  studies,
		store:    store,
		active:   make(map[string]*session.Session),
		owners:   make(map[sessionOwner]string),
	}
}

// StartSession loads the due items of the user and opens a session over them.
// The previous session of the user for the training type is closed first so its answers are saved.
func (h *ReviewHandler) StartSession(
	ctx context.Context,
	req *connect.Request[StartSessionRequest],
) (*connect.Response[StartSessionResponse], error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, toConnectError(study.ErrNotAuthenticated)
	}
	owner := sessionOwner{userID: userID, trainingType: req.Msg.TrainingType}

	h.mu.Lock()
	previous := h.detachLocked(owner)
	h.mu.Unlock()
	h.closeReplaced(ctx, previous)

	sess, err := h.sessions.StartSession(ctx, userID, req.Msg.TrainingType)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &StartSessionResponse{
		SessionID: sess.ID,
		Status:    sess.Status(),
		Item:      sess.CurrentItem(),
	}
	resp.BoxLevel, _ = sess.CurrentBoxLevel()
	if resp.Item == nil {
		// Nothing is due; there is nothing to keep.
		return connect.NewResponse(resp), nil
	}

	h.mu.Lock()
	// A concurrent StartSession of the same owner may have stored its session meanwhile.
	previous = h.detachLocked(owner)
	h.active[sess.ID] = sess
	h.owners[owner] = sess.ID
	h.mu.Unlock()
	h.closeReplaced(ctx, previous)
	return connect.NewResponse(resp), nil
}

// CurrentItem returns the item to present next.
func (h *ReviewHandler) CurrentItem(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[CurrentItemResponse], error) {
	sess, err := h.lookup(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	resp := &CurrentItemResponse{Item: sess.CurrentItem()}
	resp.BoxLevel, _ = sess.CurrentBoxLevel()
	return connect.NewResponse(resp), nil
}

// Answer grades the current item. It returns before the answer is saved.
func (h *ReviewHandler) Answer(
	ctx context.Context,
	req *connect.Request[AnswerRequest],
) (*connect.Response[AnswerResponse], error) {
	sess, err := h.lookup(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	result, err := sess.Answer(req.Msg.IsCorrect)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&AnswerResponse{
		Status:       result.Status,
		VocabularyID: result.VocabularyID,
		NewBoxLevel:  result.NewBoxLevel,
		NextItem:     sess.CurrentItem(),
	}), nil
}

// SessionStatus returns the progress of a session and the answers that could not be saved.
func (h *ReviewHandler) SessionStatus(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[SessionStatusResponse], error) {
	sess, err := h.lookup(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&SessionStatusResponse{Status: sess.Status()}), nil
}

// EndSession waits for the pending answers of a session and forgets it.
// Answers still pending when ctx ends are reported in the status.
func (h *ReviewHandler) EndSession(
	ctx context.Context,
	req *connect.Request[SessionRequest],
) (*connect.Response[EndSessionResponse], error) {
	sess, err := h.lookup(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.forgetLocked(sess)
	h.mu.Unlock()

	if err := sess.Close(ctx); err != nil {
		slog.Warn("review session closed with pending answers",
			"session_id", sess.ID,
			"error", err,
		)
	}
	return connect.NewResponse(&EndSessionResponse{Status: sess.Status()}), nil
}

// RegisterItem makes a vocabulary item studyable by the user. Registering twice keeps the box level.
func (h *ReviewHandler) RegisterItem(
	ctx context.Context,
	req *connect.Request[ItemRequest],
) (*connect.Response[RegisterItemResponse], error) {
	key, err := h.itemKey(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if _, err := h.store.GetItem(ctx, key.VocabularyID); err != nil {
		return nil, toConnectError(err)
	}

	status, err := h.studies.EnsureRegistered(ctx, key)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&RegisterItemResponse{Status: status}), nil
}

// UnregisterItem removes a vocabulary item from the reviews of the user. Its history is kept.
func (h *ReviewHandler) UnregisterItem(
	ctx context.Context,
	req *connect.Request[ItemRequest],
) (*connect.Response[UnregisterItemResponse], error) {
	key, err := h.itemKey(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	if err := h.studies.Unregister(ctx, key); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&UnregisterItemResponse{}), nil
}

// SetCompleted takes a vocabulary item out of the reviews of the user, or puts it back.
func (h *ReviewHandler) SetCompleted(
	ctx context.Context,
	req *connect.Request[SetCompletedRequest],
) (*connect.Response[SetCompletedResponse], error) {
	key, err := h.itemKey(ctx, &req.Msg.ItemRequest)
	if err != nil {
		return nil, err
	}
	if err := h.studies.MarkCompleted(ctx, key, req.Msg.IsCompleted); err != nil {
		return nil, toConnectError(err)
	}
	status, err := h.studies.FindByKey(ctx, key)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SetCompletedResponse{Status: status}), nil
}

// ListHistory returns the answers the user gave for a vocabulary item.
func (h *ReviewHandler) ListHistory(
	ctx context.Context,
	req *connect.Request[ItemRequest],
) (*connect.Response[ListHistoryResponse], error) {
	key, err := h.itemKey(ctx, req.Msg)
	if err != nil {
		return nil, err
	}
	entries, err := h.studies.ListHistory(ctx, key)
	if err != nil {
		return nil, toConnectError(err)
	}
	if entries == nil {
		entries = []study.HistoryEntry{}
	}
	return connect.NewResponse(&ListHistoryResponse{Entries: entries}), nil
}

// Shutdown closes every open session, waiting for their pending answers until ctx ends.
func (h *ReviewHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	sessions := make([]*session.Session, 0, len(h.active))
	for _, sess := range h.active {
		sessions = append(sessions, sess)
	}
	clear(h.active)
	clear(h.owners)
	h.mu.Unlock()

	var errs []error
	for _, sess := range sessions {
		if err := sess.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// detachLocked removes the open session of owner and returns it, or nil when there is none.
func (h *ReviewHandler) detachLocked(owner sessionOwner) *session.Session {
	id, ok := h.owners[owner]
	if !ok {
		return nil
	}
	sess := h.active[id]
	h.forgetLocked(sess)
	return sess
}

func (h *ReviewHandler) forgetLocked(sess *session.Session) {
	if sess == nil {
		return
	}
	delete(h.active, sess.ID)
	owner := sessionOwner{userID: sess.UserID, trainingType: sess.TrainingType}
	if h.owners[owner] == sess.ID {
		delete(h.owners, owner)
	}
}

// closeReplaced closes a session replaced by a new one. Its pending answers are saved even when
// the request that replaced it is canceled.
func (h *ReviewHandler) closeReplaced(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), replacedSessionCloseTimeout)
	defer cancel()
	if err := sess.Close(ctx); err != nil {
		slog.Warn("replaced review session closed with pending answers",
			"session_id", sess.ID,
			"error", err,
		)
		return
	}
	slog.Info("review session replaced",
		"session_id", sess.ID,
		"user_id", sess.UserID,
		"training_type", sess.TrainingType,
	)
}

func (h *ReviewHandler) lookup(ctx context.Context, sessionID string) (*session.Session, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return nil, toConnectError(study.ErrNotAuthenticated)
	}
	if sessionID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("session_id is required"))
	}

	h.mu.Lock()
	sess, ok := h.active[sessionID]
	h.mu.Unlock()
	// Sessions of other users are reported as missing.
	if !ok || sess.UserID != userID {
		return nil, toConnectError(fmt.Errorf("%w: %s", errSessionNotFound, sessionID))
	}
	return sess, nil
}

func (h *ReviewHandler) itemKey(ctx context.Context, msg *ItemRequest) (study.Key, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return study.Key{}, toConnectError(study.ErrNotAuthenticated)
	}
	if msg.VocabularyID <= 0 {
		return study.Key{}, connect.NewError(connect.CodeInvalidArgument, errors.New("vocabulary_id is required"))
	}
	if !msg.TrainingType.IsValid() {
		return study.Key{}, toConnectError(fmt.Errorf("%w: %d", session.ErrInvalidTrainingType, int(msg.TrainingType)))
	}
	return study.Key{
		UserID:       userID,
		VocabularyID: msg.VocabularyID,
		TrainingType: msg.TrainingType,
	}, nil
}
