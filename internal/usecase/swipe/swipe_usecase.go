package swipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/cache"
	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/infrastructure/notify"
	"github.com/amora-app/amora-backend/internal/repository"
)

// UndoStore is the bounded append-only swipe history backing the undo
// feature, kept separate from the overwrite-based canonical table.
type UndoStore interface {
	Push(ctx context.Context, userID int64, entry cache.UndoEntry) error
	PopLatest(ctx context.Context, userID int64) (*cache.UndoEntry, error)
}

type SwipeUseCase struct {
	swipeRepo   repository.SwipeRepository
	matchRepo   repository.MatchRepository
	profileRepo repository.ProfileStore
	undoLog     UndoStore
	notifier    notify.Notifier
	logger      *zap.Logger
}

func NewSwipeUseCase(
	swipeRepo repository.SwipeRepository,
	matchRepo repository.MatchRepository,
	profileRepo repository.ProfileStore,
	undoLog UndoStore,
	notifier notify.Notifier,
	logger *zap.Logger,
) *SwipeUseCase {
	return &SwipeUseCase{
		swipeRepo:   swipeRepo,
		matchRepo:   matchRepo,
		profileRepo: profileRepo,
		undoLog:     undoLog,
		notifier:    notifier,
		logger:      logger,
	}
}

// SwipeRequest represents a swipe action
type SwipeRequest struct {
	ToUserID int64  `json:"to_user_id" binding:"required"`
	Action   string `json:"action" binding:"required,swipeaction"`
}

// SwipeResponse represents swipe result
type SwipeResponse struct {
	IsMatch bool   `json:"is_match"`
	MatchID *int64 `json:"match_id,omitempty"`
}

// UndoResponse carries the undone target for re-display.
type UndoResponse struct {
	Profile *domain.Profile  `json:"profile"`
	Action  domain.SwipeType `json:"action"`
}

// RecordAction upserts the (from,to) swipe row and, for a positive action,
// checks the reverse direction. The check-then-create sequence is not atomic:
// the match insert is idempotent on the normalized pair, so a mutual-swipe
// race still yields exactly one match and both callers see the same ID.
func (uc *SwipeUseCase) RecordAction(ctx context.Context, fromID int64, req *SwipeRequest) (*SwipeResponse, error) {
	if fromID == req.ToUserID {
		return nil, domain.ErrCannotSwipeSelf
	}
	action := domain.SwipeType(req.Action)
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, req.Action)
	}

	target, err := uc.profileRepo.GetProfile(ctx, req.ToUserID)
	if err != nil {
		return nil, err
	}
	if !target.IsActive {
		return nil, domain.ErrProfileNotFound
	}

	swipe := &domain.SwipeAction{FromID: fromID, ToID: req.ToUserID, Action: action}
	if err := uc.swipeRepo.Upsert(ctx, swipe); err != nil {
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}

	if err := uc.undoLog.Push(ctx, fromID, cache.UndoEntry{
		ToID:   req.ToUserID,
		Action: action,
		At:     time.Now(),
	}); err != nil {
		// Undo history is best-effort; the canonical row is already written.
		uc.logger.Warn("undo log push failed", zap.Int64("user_id", fromID), zap.Error(err))
	}

	response := &SwipeResponse{}
	if !action.Positive() {
		return response, nil
	}

	uc.notifier.NotifyLike(ctx, req.ToUserID, fromID, action == domain.SwipeSuperLike)

	reverse, err := uc.swipeRepo.HasPositive(ctx, req.ToUserID, fromID)
	if err != nil {
		// The swipe itself succeeded; a failed mutual check degrades to
		// "no match yet" rather than failing the request.
		uc.logger.Warn("mutual-like check failed",
			zap.Int64("from", fromID), zap.Int64("to", req.ToUserID), zap.Error(err))
		return response, nil
	}
	if !reverse {
		return response, nil
	}

	match, err := uc.matchRepo.CreateIdempotent(ctx, fromID, req.ToUserID)
	if err != nil {
		uc.logger.Error("match creation failed",
			zap.Int64("from", fromID), zap.Int64("to", req.ToUserID), zap.Error(err))
		return response, nil
	}

	response.IsMatch = true
	response.MatchID = &match.ID
	uc.notifier.NotifyMatch(ctx, match.UserAID, match.UserBID)
	return response, nil
}

// UndoLast reverts the actor's most recent swipe within the grace window.
// VIP-only.
func (uc *SwipeUseCase) UndoLast(ctx context.Context, userID int64) (*UndoResponse, error) {
	actor, err := uc.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.VIP {
		return nil, domain.ErrUndoNotAllowed
	}

	entry, err := uc.undoLog.PopLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNothingToUndo) {
			return nil, domain.ErrNothingToUndo
		}
		return nil, err
	}

	if err := uc.swipeRepo.Delete(ctx, userID, entry.ToID); err != nil {
		// The entry is already popped; put it back so the undo can be retried.
		if pushErr := uc.undoLog.Push(ctx, userID, *entry); pushErr != nil {
			uc.logger.Error("failed to restore undo entry after delete failure",
				zap.Int64("user_id", userID), zap.Error(pushErr))
		}
		return nil, fmt.Errorf("failed to delete swipe: %w", err)
	}

	target, err := uc.profileRepo.GetProfile(ctx, entry.ToID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			// Target vanished since the swipe; the undo itself still stands.
			return &UndoResponse{Action: entry.Action}, nil
		}
		return nil, err
	}
	return &UndoResponse{Profile: target, Action: entry.Action}, nil
}
