package location

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/geo"
	"github.com/amora-app/amora-backend/internal/repository"
)

// GeoWriter is the write surface of the geo index used by location sync.
type GeoWriter interface {
	Upsert(ctx context.Context, userID int64, lat, lon float64, metadata map[string]string) error
	Remove(ctx context.Context, userID int64) error
}

// CacheInvalidator drops a requester's cached discovery pages.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, requesterID int64) error
}

// VisibilityStore reads and toggles the incognito flag.
type VisibilityStore interface {
	Set(ctx context.Context, userID int64, on bool) error
	IsIncognito(ctx context.Context, userID int64) (bool, error)
}

// LocationUseCase keeps the geo index in sync with the primary store and
// scopes cache invalidation to the moving user.
type LocationUseCase struct {
	profileRepo repository.ProfileStore
	geoIndex    GeoWriter
	invalidator CacheInvalidator
	visibility  VisibilityStore
	logger      *zap.Logger
}

func NewLocationUseCase(
	profileRepo repository.ProfileStore,
	geoIndex GeoWriter,
	invalidator CacheInvalidator,
	visibility VisibilityStore,
	logger *zap.Logger,
) *LocationUseCase {
	return &LocationUseCase{
		profileRepo: profileRepo,
		geoIndex:    geoIndex,
		invalidator: invalidator,
		visibility:  visibility,
		logger:      logger,
	}
}

// UpdateLocation persists the new coordinates to the primary store, then
// syncs the geo index entry (with a fresh metadata snapshot) and invalidates
// the requester's cached discovery pages. The primary store is the source of
// truth: index and cache failures degrade, they do not fail the update.
func (uc *LocationUseCase) UpdateLocation(ctx context.Context, userID int64, lat, lon float64) error {
	if !geo.ValidCoordinates(lat, lon) {
		return fmt.Errorf("%w: lat=%f lon=%f", domain.ErrInvalidCoordinate, lat, lon)
	}

	if err := uc.profileRepo.UpdateLocation(ctx, userID, lat, lon); err != nil {
		return err
	}

	profile, err := uc.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}

	if err := uc.geoIndex.Upsert(ctx, userID, lat, lon, metadataSnapshot(profile)); err != nil {
		uc.logger.Warn("geo index sync degraded", zap.Int64("user_id", userID), zap.Error(err))
	}
	if err := uc.invalidator.InvalidateUser(ctx, userID); err != nil {
		uc.logger.Warn("cache invalidation degraded", zap.Int64("user_id", userID), zap.Error(err))
	}
	return nil
}

// SetVisibility toggles incognito mode. Going incognito also removes the
// geo entry so the user stops appearing in radius queries immediately.
func (uc *LocationUseCase) SetVisibility(ctx context.Context, userID int64, incognito bool) error {
	if _, err := uc.profileRepo.GetProfile(ctx, userID); err != nil {
		return err
	}

	if err := uc.visibility.Set(ctx, userID, incognito); err != nil {
		return err
	}

	if incognito {
		if err := uc.geoIndex.Remove(ctx, userID); err != nil {
			uc.logger.Warn("geo entry removal degraded", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil
	}

	// Back to visible: restore the index entry if the profile has a location.
	profile, err := uc.profileRepo.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if profile.HasCoordinates() {
		if err := uc.geoIndex.Upsert(ctx, userID, *profile.LocationLat, *profile.LocationLon, metadataSnapshot(profile)); err != nil {
			uc.logger.Warn("geo index restore degraded", zap.Int64("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// Visibility reports whether the user is currently incognito.
func (uc *LocationUseCase) Visibility(ctx context.Context, userID int64) (bool, error) {
	if _, err := uc.profileRepo.GetProfile(ctx, userID); err != nil {
		return false, err
	}
	return uc.visibility.IsIncognito(ctx, userID)
}

func metadataSnapshot(p *domain.Profile) map[string]string {
	return map[string]string{
		"age":    strconv.Itoa(p.Age),
		"gender": p.Gender,
		"vip":    strconv.FormatBool(p.VIP),
	}
}
