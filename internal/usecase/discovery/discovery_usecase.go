package discovery

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/cache"
	"github.com/amora-app/amora-backend/internal/config"
	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/filter"
	"github.com/amora-app/amora-backend/internal/geo"
	"github.com/amora-app/amora-backend/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	minSupersetSize = 100
)

// GeoIndex is the slice of the geospatial index the orchestrator consumes.
type GeoIndex interface {
	RadiusQuery(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]geo.Neighbor, error)
	BulkMetadata(ctx context.Context, userIDs []int64) (map[int64]map[string]string, error)
}

// ResultCache is the discovery page cache.
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.DiscoveryPage, bool, error)
	Set(ctx context.Context, key string, page *domain.DiscoveryPage) error
}

// VisibilityStore answers which users are hidden from discovery.
type VisibilityStore interface {
	AnyIncognito(ctx context.Context, userIDs []int64) (map[int64]struct{}, error)
}

type DiscoveryUseCase struct {
	profileRepo repository.ProfileStore
	swipeRepo   repository.SwipeRepository
	geoIndex    GeoIndex
	resultCache ResultCache
	visibility  VisibilityStore
	engine      *filter.Engine
	cfg         config.DiscoveryConfig
	logger      *zap.Logger
}

func NewDiscoveryUseCase(
	profileRepo repository.ProfileStore,
	swipeRepo repository.SwipeRepository,
	geoIndex GeoIndex,
	resultCache ResultCache,
	visibility VisibilityStore,
	engine *filter.Engine,
	cfg config.DiscoveryConfig,
	logger *zap.Logger,
) *DiscoveryUseCase {
	return &DiscoveryUseCase{
		profileRepo: profileRepo,
		swipeRepo:   swipeRepo,
		geoIndex:    geoIndex,
		resultCache: resultCache,
		visibility:  visibility,
		engine:      engine,
		cfg:         cfg,
		logger:      logger,
	}
}

// DiscoverRequest carries the filter spec plus the pagination window.
type DiscoverRequest struct {
	domain.FilterSpec
	Offset int `json:"offset" binding:"omitempty,min=0"`
	Limit  int `json:"limit" binding:"omitempty,min=1,max=100"`
}

// Discover runs the full pipeline: resolve requester, consult the cache,
// retrieve geo candidates (or the bounded fallback scan), exclude
// seen/blocked/hidden users, filter, paginate and write through.
//
// Only an unknown requester or an invalid spec fails the request; every
// other collaborator failure degrades to best-effort results.
func (uc *DiscoveryUseCase) Discover(ctx context.Context, requesterID int64, req *DiscoverRequest) (*domain.DiscoveryPage, error) {
	requester, err := uc.profileRepo.GetProfile(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.IsActive {
		return nil, domain.ErrProfileNotFound
	}

	spec := req.FilterSpec
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	key := cache.Key(requesterID, cache.Fingerprint(&spec), offset, limit)
	if page, found, err := uc.resultCache.Get(ctx, key); err != nil {
		uc.logger.Warn("discovery cache read degraded", zap.Error(err))
	} else if found {
		page.Cached = true
		return page, nil
	}

	candidates := uc.resolveCandidates(ctx, requester, &spec, limit)

	excluded := uc.exclusionSet(ctx, requesterID, candidates)
	visible := candidates[:0]
	for _, p := range candidates {
		if p.ID == requesterID {
			continue
		}
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		if !p.IsActive {
			continue
		}
		visible = append(visible, p)
	}

	var origin *filter.Origin
	if requester.HasCoordinates() {
		origin = &filter.Origin{Lat: *requester.LocationLat, Lon: *requester.LocationLon}
	}
	filtered, err := uc.engine.Apply(visible, &spec, origin)
	if err != nil {
		return nil, err
	}

	total := len(filtered)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := &domain.DiscoveryPage{
		Profiles:   filtered[start:end],
		Total:      total,
		Cached:     false,
		ProducedAt: time.Now().UTC(),
	}

	// Write-through is non-critical: detach it from the request context so a
	// client disconnect does not abort it.
	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := uc.resultCache.Set(writeCtx, key, page); err != nil {
			uc.logger.Warn("discovery cache write degraded", zap.Error(err))
		}
	}()

	return page, nil
}

// resolveCandidates prefers the geo index when a distance filter and
// requester coordinates exist; anything else, including a degraded geo
// backend, falls back to a bounded scan of recently-active profiles.
func (uc *DiscoveryUseCase) resolveCandidates(ctx context.Context, requester *domain.Profile, spec *domain.FilterSpec, limit int) []*domain.Profile {
	if spec.HasDistance() && requester.HasCoordinates() {
		superset := limit * uc.cfg.SupersetFactor
		if superset < minSupersetSize {
			superset = minSupersetSize
		}
		neighbors, err := uc.geoIndex.RadiusQuery(ctx, *requester.LocationLat, *requester.LocationLon, *spec.MaxDistanceKm, superset)
		if err == nil {
			return uc.validateNeighbors(ctx, neighbors, spec)
		}
		uc.logger.Warn("geo radius query degraded, falling back to activity scan", zap.Error(err))
	}
	return uc.fallbackScan(ctx)
}

// validateNeighbors turns radius hits into authoritative profiles. The geo
// index is derived state, so every ID must be re-read from the primary
// store; stale metadata may prefilter obviously-out candidates first to
// shrink that read.
func (uc *DiscoveryUseCase) validateNeighbors(ctx context.Context, neighbors []geo.Neighbor, spec *domain.FilterSpec) []*domain.Profile {
	if len(neighbors) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(neighbors))
	for _, n := range neighbors {
		ids = append(ids, n.UserID)
	}

	if meta, err := uc.geoIndex.BulkMetadata(ctx, ids); err != nil {
		uc.logger.Warn("geo metadata lookup degraded, skipping prefilter", zap.Error(err))
	} else if len(meta) > 0 {
		ids = prefilterByMetadata(ids, meta, spec)
	}
	if len(ids) == 0 {
		return nil
	}

	profiles, err := uc.profileRepo.GetProfiles(ctx, ids)
	if err != nil {
		uc.logger.Warn("neighbor validation degraded, falling back to activity scan", zap.Error(err))
		return uc.fallbackScan(ctx)
	}
	if len(profiles) < len(ids) {
		uc.logger.Debug("geo index returned stale entries",
			zap.Int("indexed", len(ids)), zap.Int("validated", len(profiles)))
	}
	return profiles
}

func (uc *DiscoveryUseCase) fallbackScan(ctx context.Context) []*domain.Profile {
	profiles, err := uc.profileRepo.ListRecentlyActive(ctx, uc.cfg.FallbackScanLimit)
	if err != nil {
		uc.logger.Error("fallback candidate scan failed", zap.Error(err))
		return nil
	}
	return profiles
}

// exclusionSet merges already-swiped, blocked and incognito IDs. Each lookup
// is best-effort: a failure shrinks the exclusions rather than the results.
func (uc *DiscoveryUseCase) exclusionSet(ctx context.Context, requesterID int64, candidates []*domain.Profile) map[int64]struct{} {
	excluded := make(map[int64]struct{})

	if swiped, err := uc.swipeRepo.SwipedIDs(ctx, requesterID); err != nil {
		uc.logger.Warn("swiped-ids lookup degraded", zap.Error(err))
	} else {
		for id := range swiped {
			excluded[id] = struct{}{}
		}
	}

	if blocked, err := uc.profileRepo.GetBlockList(ctx, requesterID); err != nil {
		uc.logger.Warn("block-list lookup degraded", zap.Error(err))
	} else {
		for id := range blocked {
			excluded[id] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	if hidden, err := uc.visibility.AnyIncognito(ctx, ids); err != nil {
		uc.logger.Warn("incognito lookup degraded", zap.Error(err))
	} else {
		for id := range hidden {
			excluded[id] = struct{}{}
		}
	}
	return excluded
}

// prefilterByMetadata drops IDs whose metadata snapshot already fails the
// cheap scalar predicates. Metadata may be stale or absent; absence keeps
// the ID, and the authoritative filter still runs on primary-store rows.
func prefilterByMetadata(ids []int64, meta map[int64]map[string]string, spec *domain.FilterSpec) []int64 {
	if spec.AgeMin == nil && spec.AgeMax == nil && spec.Gender == nil {
		return ids
	}
	kept := ids[:0]
	for _, id := range ids {
		fields, ok := meta[id]
		if !ok {
			kept = append(kept, id)
			continue
		}
		if ageStr, ok := fields["age"]; ok {
			if age, err := strconv.Atoi(ageStr); err == nil {
				if spec.AgeMin != nil && age < *spec.AgeMin {
					continue
				}
				if spec.AgeMax != nil && age > *spec.AgeMax {
					continue
				}
			}
		}
		if spec.Gender != nil {
			if g, ok := fields["gender"]; ok && g != *spec.Gender {
				continue
			}
		}
		kept = append(kept, id)
	}
	return kept
}
