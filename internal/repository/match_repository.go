package repository

import (
	"context"
	"time"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/pagination"
)

// MatchRepository persists mutual-like matches, unique per normalized pair.
type MatchRepository interface {
	// CreateIdempotent inserts the match for the (unordered) pair, or
	// returns the existing row when a concurrent insert won the race.
	CreateIdempotent(ctx context.Context, userA, userB int64) (*domain.Match, error)
	GetByID(ctx context.Context, id int64) (*domain.Match, error)
	GetByUsers(ctx context.Context, userA, userB int64) (*domain.Match, error)
	// ListActivePage reads one keyset page of a user's active matches
	// ordered by (created_at, id) descending. A nil boundary starts from
	// the newest row. Fetches up to limit rows.
	ListActivePage(ctx context.Context, userID int64, boundaryTS *time.Time, boundaryID int64, dir pagination.Direction, limit int) ([]*domain.Match, error)
	Deactivate(ctx context.Context, id int64) error
}
