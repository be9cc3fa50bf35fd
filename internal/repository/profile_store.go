package repository

import (
	"context"

	"github.com/amora-app/amora-backend/internal/domain"
)

// ProfileStore is the narrow read surface onto the primary profile store.
// Profiles are owned by the profile-management collaborator; this core only
// reads them, except for the location sync path.
type ProfileStore interface {
	GetProfile(ctx context.Context, id int64) (*domain.Profile, error)
	// GetProfiles fetches many active profiles in one round trip; IDs with
	// no active profile are silently absent from the result.
	GetProfiles(ctx context.Context, ids []int64) ([]*domain.Profile, error)
	// ListRecentlyActive is the bounded fallback scan used when the geo
	// index is unavailable or the requester has no coordinates.
	ListRecentlyActive(ctx context.Context, limit int) ([]*domain.Profile, error)
	GetBlockList(ctx context.Context, userID int64) (map[int64]struct{}, error)
	UpdateLocation(ctx context.Context, userID int64, lat, lon float64) error
}
