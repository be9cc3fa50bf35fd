package matches

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/pagination"
	"github.com/amora-app/amora-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type MatchesUseCase struct {
	matchRepo   repository.MatchRepository
	profileRepo repository.ProfileStore
	logger      *zap.Logger
}

func NewMatchesUseCase(
	matchRepo repository.MatchRepository,
	profileRepo repository.ProfileStore,
	logger *zap.Logger,
) *MatchesUseCase {
	return &MatchesUseCase{
		matchRepo:   matchRepo,
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// MatchItem is one row of the paginated match listing.
type MatchItem struct {
	MatchID     int64     `json:"match_id"`
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age"`
	VIP         bool      `json:"vip"`
	MatchedAt   time.Time `json:"matched_at"`
}

// MatchPage is a cursor-delimited window of a user's active matches.
type MatchPage struct {
	Items      []*MatchItem `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
	HasMore    bool         `json:"has_more"`
}

// List returns one keyset page of the user's active matches, newest first.
// A malformed cursor restarts from the beginning rather than failing.
func (uc *MatchesUseCase) List(ctx context.Context, userID int64, cursorToken string, limit int, dir pagination.Direction) (*MatchPage, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var boundaryTS *time.Time
	var boundaryID int64
	if cursorToken != "" {
		ts, id, err := pagination.Decode(cursorToken)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidCursor) {
				return nil, err
			}
			uc.logger.Debug("invalid cursor, restarting from newest", zap.Error(err))
		} else {
			boundaryTS = &ts
			boundaryID = id
		}
	}

	rows, err := uc.matchRepo.ListActivePage(ctx, userID, boundaryTS, boundaryID, dir, limit+1)
	if err != nil {
		return nil, err
	}

	page, next, hasMore := pagination.BuildPage(rows, limit, func(m *domain.Match) (time.Time, int64) {
		return m.CreatedAt, m.ID
	})

	items := make([]*MatchItem, 0, len(page))
	counterparts := make([]int64, 0, len(page))
	for _, m := range page {
		if other, ok := m.OtherUserID(userID); ok {
			counterparts = append(counterparts, other)
		}
	}
	profiles, err := uc.profileRepo.GetProfiles(ctx, counterparts)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.ID] = p
	}

	for _, m := range page {
		other, ok := m.OtherUserID(userID)
		if !ok {
			continue
		}
		item := &MatchItem{MatchID: m.ID, UserID: other, MatchedAt: m.CreatedAt}
		if p, ok := byID[other]; ok {
			item.DisplayName = p.DisplayName
			item.Age = p.Age
			item.VIP = p.VIP
		}
		items = append(items, item)
	}

	return &MatchPage{Items: items, NextCursor: next, HasMore: hasMore}, nil
}

// Get returns one of the caller's active matches by ID. Matches the caller
// is not part of are indistinguishable from missing ones.
func (uc *MatchesUseCase) Get(ctx context.Context, userID, matchID int64) (*MatchItem, error) {
	match, err := uc.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsActive || !match.HasUser(userID) {
		return nil, domain.ErrMatchNotFound
	}

	other, _ := match.OtherUserID(userID)
	item := &MatchItem{MatchID: match.ID, UserID: other, MatchedAt: match.CreatedAt}
	profile, err := uc.profileRepo.GetProfile(ctx, other)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			// Counterpart vanished since matching; the match itself stands.
			return item, nil
		}
		return nil, err
	}
	item.DisplayName = profile.DisplayName
	item.Age = profile.Age
	item.VIP = profile.VIP
	return item, nil
}

// Unmatch deactivates (never deletes) the match between the caller and the
// target.
func (uc *MatchesUseCase) Unmatch(ctx context.Context, userID, targetID int64) error {
	match, err := uc.matchRepo.GetByUsers(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !match.HasUser(userID) {
		return domain.ErrMatchNotFound
	}
	return uc.matchRepo.Deactivate(ctx, match.ID)
}
