package repository

import (
	"context"

	"github.com/amora-app/amora-backend/internal/domain"
)

// SwipeRepository persists directional swipe actions with at most one row
// per ordered (from, to) pair.
type SwipeRepository interface {
	// Upsert overwrites any prior action for the pair (re-swipe semantics).
	Upsert(ctx context.Context, action *domain.SwipeAction) error
	// GetByUsers returns nil without error when the pair has no action.
	GetByUsers(ctx context.Context, fromID, toID int64) (*domain.SwipeAction, error)
	// SwipedIDs returns every user the actor has already acted on.
	SwipedIDs(ctx context.Context, fromID int64) (map[int64]struct{}, error)
	// HasPositive reports whether from→to is recorded as like or superlike.
	HasPositive(ctx context.Context, fromID, toID int64) (bool, error)
	// Delete removes the pair's action; deleting an absent row is not an error.
	Delete(ctx context.Context, fromID, toID int64) error
}
