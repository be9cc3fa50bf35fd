package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/config"
	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/filter"
	"github.com/amora-app/amora-backend/internal/geo"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

type fakeProfiles struct {
	byID         map[int64]*domain.Profile
	recent       []*domain.Profile
	blocked      map[int64]struct{}
	bulkErr      error
	lastBulkIDs  []int64
	recentCalled bool
}

func (s *fakeProfiles) GetProfile(_ context.Context, id int64) (*domain.Profile, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (s *fakeProfiles) GetProfiles(_ context.Context, ids []int64) ([]*domain.Profile, error) {
	s.lastBulkIDs = ids
	if s.bulkErr != nil {
		return nil, s.bulkErr
	}
	var out []*domain.Profile
	for _, id := range ids {
		if p, ok := s.byID[id]; ok && p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProfiles) ListRecentlyActive(_ context.Context, limit int) ([]*domain.Profile, error) {
	s.recentCalled = true
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

func (s *fakeProfiles) GetBlockList(_ context.Context, _ int64) (map[int64]struct{}, error) {
	return s.blocked, nil
}

func (s *fakeProfiles) UpdateLocation(_ context.Context, _ int64, _, _ float64) error {
	return nil
}

type fakeSwipes struct {
	swiped map[int64]struct{}
}

func (r *fakeSwipes) Upsert(_ context.Context, _ *domain.SwipeAction) error { return nil }
func (r *fakeSwipes) GetByUsers(_ context.Context, _, _ int64) (*domain.SwipeAction, error) {
	return nil, nil
}
func (r *fakeSwipes) SwipedIDs(_ context.Context, _ int64) (map[int64]struct{}, error) {
	return r.swiped, nil
}
func (r *fakeSwipes) HasPositive(_ context.Context, _, _ int64) (bool, error) { return false, nil }
func (r *fakeSwipes) Delete(_ context.Context, _, _ int64) error              { return nil }

type fakeGeo struct {
	neighbors   []geo.Neighbor
	radiusErr   error
	meta        map[int64]map[string]string
	metaErr     error
	radiusCalls int
}

func (g *fakeGeo) RadiusQuery(_ context.Context, _, _, _ float64, _ int) ([]geo.Neighbor, error) {
	g.radiusCalls++
	if g.radiusErr != nil {
		return nil, g.radiusErr
	}
	return g.neighbors, nil
}

func (g *fakeGeo) BulkMetadata(_ context.Context, _ []int64) (map[int64]map[string]string, error) {
	if g.metaErr != nil {
		return nil, g.metaErr
	}
	return g.meta, nil
}

type fakeCache struct {
	mu      sync.Mutex
	pages   map[string]*domain.DiscoveryPage
	written chan string
}

func newFakeCache() *fakeCache {
	return &fakeCache{pages: map[string]*domain.DiscoveryPage{}, written: make(chan string, 4)}
}

func (c *fakeCache) Get(_ context.Context, key string) (*domain.DiscoveryPage, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if page, ok := c.pages[key]; ok {
		copied := *page
		return &copied, true, nil
	}
	return nil, false, nil
}

func (c *fakeCache) Set(_ context.Context, key string, page *domain.DiscoveryPage) error {
	c.mu.Lock()
	c.pages[key] = page
	c.mu.Unlock()
	select {
	case c.written <- key:
	default:
	}
	return nil
}

func (c *fakeCache) awaitWrite(t *testing.T) {
	t.Helper()
	select {
	case <-c.written:
	case <-time.After(time.Second):
		t.Fatal("cache write-through never happened")
	}
}

type fakeVisibility struct {
	hidden map[int64]struct{}
}

func (v *fakeVisibility) AnyIncognito(_ context.Context, _ []int64) (map[int64]struct{}, error) {
	return v.hidden, nil
}

type fixture struct {
	uc       *DiscoveryUseCase
	profiles *fakeProfiles
	geo      *fakeGeo
	cache    *fakeCache
}

func activeProfile(id int64, age int, lat, lon float64) *domain.Profile {
	return &domain.Profile{
		ID:           id,
		DisplayName:  "user",
		Age:          age,
		Gender:       "female",
		LocationLat:  &lat,
		LocationLon:  &lon,
		IsActive:     true,
		LastActiveAt: time.Now().Add(-time.Duration(id) * time.Minute),
	}
}

func newFixture() *fixture {
	requester := activeProfile(1, 25, 55.75, 37.61)
	profiles := &fakeProfiles{byID: map[int64]*domain.Profile{1: requester}}
	gx := &fakeGeo{}
	rc := newFakeCache()
	uc := NewDiscoveryUseCase(
		profiles,
		&fakeSwipes{},
		gx,
		rc,
		&fakeVisibility{},
		filter.NewEngine(),
		config.DiscoveryConfig{SupersetFactor: 5, FallbackScanLimit: 500},
		zap.NewNop(),
	)
	return &fixture{uc: uc, profiles: profiles, geo: gx, cache: rc}
}

func (f *fixture) addNearby(id int64, age int, distKm float64) {
	// Roughly one degree of latitude per 111 km, due north of the requester.
	p := activeProfile(id, age, 55.75+distKm/111.0, 37.61)
	f.profiles.byID[id] = p
	f.geo.neighbors = append(f.geo.neighbors, geo.Neighbor{UserID: id, DistanceKm: distKm})
}

func TestDiscoverRequesterNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.uc.Discover(context.Background(), 99, &DiscoverRequest{})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestDiscoverInvalidSpec(t *testing.T) {
	f := newFixture()

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{AgeMin: intPtr(40), AgeMax: intPtr(20)}}
	_, err := f.uc.Discover(context.Background(), 1, req)
	assert.ErrorIs(t, err, domain.ErrInvalidFilterSpec)
}

func TestDiscoverRadiusWithAgeFilter(t *testing.T) {
	f := newFixture()
	f.addNearby(2, 24, 1)
	f.addNearby(3, 28, 3)
	f.addNearby(4, 45, 2)  // outside the age range
	f.addNearby(5, 26, 80) // inside index radius superset, outside requested radius
	// A stale index entry whose profile no longer exists.
	f.geo.neighbors = append(f.geo.neighbors, geo.Neighbor{UserID: 77, DistanceKm: 4})

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{
		MaxDistanceKm: floatPtr(10),
		AgeMin:        intPtr(20),
		AgeMax:        intPtr(30),
	}}
	page, err := f.uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	require.NotNil(t, page)
	assert.False(t, page.Cached)

	var ids []int64
	for _, a := range page.Profiles {
		ids = append(ids, a.Profile.ID)
		require.NotNil(t, a.DistanceKm)
		assert.LessOrEqual(t, *a.DistanceKm, 10.0)
	}
	assert.ElementsMatch(t, []int64{2, 3}, ids)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, f.geo.radiusCalls)
	assert.False(t, f.profiles.recentCalled, "radius path must not fall back")

	f.cache.awaitWrite(t)
}

func TestDiscoverExcludesSeenBlockedHiddenAndSelf(t *testing.T) {
	f := newFixture()
	f.addNearby(2, 25, 1)
	f.addNearby(3, 25, 2)
	f.addNearby(4, 25, 3)
	f.addNearby(5, 25, 4)
	// Self can appear in the index after a location sync.
	f.geo.neighbors = append(f.geo.neighbors, geo.Neighbor{UserID: 1, DistanceKm: 0})

	swipes := &fakeSwipes{swiped: map[int64]struct{}{2: {}}}
	f.profiles.blocked = map[int64]struct{}{3: {}}
	visibility := &fakeVisibility{hidden: map[int64]struct{}{4: {}}}
	uc := NewDiscoveryUseCase(
		f.profiles, swipes, f.geo, f.cache, visibility, filter.NewEngine(),
		config.DiscoveryConfig{SupersetFactor: 5, FallbackScanLimit: 500}, zap.NewNop(),
	)

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{MaxDistanceKm: floatPtr(50)}}
	page, err := uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	require.Len(t, page.Profiles, 1)
	assert.Equal(t, int64(5), page.Profiles[0].Profile.ID)
}

func TestDiscoverCacheHitSkipsPipeline(t *testing.T) {
	f := newFixture()
	f.addNearby(2, 25, 1)

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{MaxDistanceKm: floatPtr(10)}}
	first, err := f.uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	f.cache.awaitWrite(t)

	second, err := f.uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, 1, f.geo.radiusCalls, "cache hit must not re-query the index")
}

func TestDiscoverDegradedGeoFallsBack(t *testing.T) {
	f := newFixture()
	f.geo.radiusErr = &domain.DependencyDegraded{Dependency: "geo", Cause: errors.New("down")}
	f.profiles.recent = []*domain.Profile{
		activeProfile(2, 25, 55.76, 37.62),
		activeProfile(3, 30, 55.77, 37.63),
	}
	for _, p := range f.profiles.recent {
		f.profiles.byID[p.ID] = p
	}

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{MaxDistanceKm: floatPtr(10)}}
	page, err := f.uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	assert.True(t, f.profiles.recentCalled)
	assert.Len(t, page.Profiles, 2)
}

func TestDiscoverNoDistanceFilterUsesActivityScan(t *testing.T) {
	f := newFixture()
	f.profiles.recent = []*domain.Profile{activeProfile(2, 25, 55.76, 37.62)}
	f.profiles.byID[2] = f.profiles.recent[0]

	page, err := f.uc.Discover(context.Background(), 1, &DiscoverRequest{})
	require.NoError(t, err)
	assert.Zero(t, f.geo.radiusCalls)
	assert.True(t, f.profiles.recentCalled)
	assert.Len(t, page.Profiles, 1)
}

func TestDiscoverMetadataPrefilterShrinksPrimaryRead(t *testing.T) {
	f := newFixture()
	f.addNearby(2, 25, 1)
	f.addNearby(3, 55, 2)
	f.geo.meta = map[int64]map[string]string{
		2: {"age": "25", "gender": "female"},
		3: {"age": "55", "gender": "female"},
	}

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{
		MaxDistanceKm: floatPtr(10),
		AgeMax:        intPtr(30),
	}}
	page, err := f.uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	require.Len(t, page.Profiles, 1)
	assert.Equal(t, []int64{2}, f.profiles.lastBulkIDs, "metadata snapshot should drop id 3 before the primary read")
}

func TestDiscoverMetadataAbsenceKeepsCandidate(t *testing.T) {
	f := newFixture()
	f.addNearby(2, 25, 1)
	f.geo.meta = map[int64]map[string]string{} // nothing cached yet

	req := &DiscoverRequest{FilterSpec: domain.FilterSpec{
		MaxDistanceKm: floatPtr(10),
		AgeMax:        intPtr(30),
	}}
	page, err := f.uc.Discover(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Len(t, page.Profiles, 1)
}

func TestDiscoverPaginationWindow(t *testing.T) {
	f := newFixture()
	for i := int64(2); i <= 31; i++ {
		f.addNearby(i, 25, float64(i)/10)
	}
	spec := domain.FilterSpec{MaxDistanceKm: floatPtr(50)}

	t.Run("default limit", func(t *testing.T) {
		page, err := f.uc.Discover(context.Background(), 1, &DiscoverRequest{FilterSpec: spec})
		require.NoError(t, err)
		assert.Len(t, page.Profiles, 20)
		assert.Equal(t, 30, page.Total)
	})

	t.Run("second page", func(t *testing.T) {
		page, err := f.uc.Discover(context.Background(), 1, &DiscoverRequest{FilterSpec: spec, Offset: 20, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, page.Profiles, 10)
		assert.Equal(t, 30, page.Total)
	})

	t.Run("offset beyond total", func(t *testing.T) {
		page, err := f.uc.Discover(context.Background(), 1, &DiscoverRequest{FilterSpec: spec, Offset: 100, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, page.Profiles)
		assert.Equal(t, 30, page.Total)
	})
}
