package location

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/domain"
)

type fakeProfileStore struct {
	byID      map[int64]*domain.Profile
	updated   map[int64][2]float64
	updateErr error
}

func (s *fakeProfileStore) GetProfile(_ context.Context, id int64) (*domain.Profile, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, domain.ErrProfileNotFound
}

func (s *fakeProfileStore) GetProfiles(_ context.Context, ids []int64) ([]*domain.Profile, error) {
	var out []*domain.Profile
	for _, id := range ids {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProfileStore) ListRecentlyActive(_ context.Context, _ int) ([]*domain.Profile, error) {
	return nil, nil
}

func (s *fakeProfileStore) GetBlockList(_ context.Context, _ int64) (map[int64]struct{}, error) {
	return nil, nil
}

func (s *fakeProfileStore) UpdateLocation(_ context.Context, userID int64, lat, lon float64) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated[userID] = [2]float64{lat, lon}
	if p, ok := s.byID[userID]; ok {
		p.LocationLat = &lat
		p.LocationLon = &lon
	}
	return nil
}

type fakeGeoWriter struct {
	upserts  map[int64]map[string]string
	removed  map[int64]bool
	writeErr error
}

func (g *fakeGeoWriter) Upsert(_ context.Context, userID int64, _, _ float64, metadata map[string]string) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	g.upserts[userID] = metadata
	return nil
}

func (g *fakeGeoWriter) Remove(_ context.Context, userID int64) error {
	g.removed[userID] = true
	return nil
}

type fakeInvalidator struct {
	calls []int64
	err   error
}

func (i *fakeInvalidator) InvalidateUser(_ context.Context, requesterID int64) error {
	i.calls = append(i.calls, requesterID)
	return i.err
}

type fakeVisibility struct {
	state map[int64]bool
}

func (v *fakeVisibility) Set(_ context.Context, userID int64, on bool) error {
	v.state[userID] = on
	return nil
}

func (v *fakeVisibility) IsIncognito(_ context.Context, userID int64) (bool, error) {
	return v.state[userID], nil
}

func newFixture() (*LocationUseCase, *fakeProfileStore, *fakeGeoWriter, *fakeInvalidator, *fakeVisibility) {
	profiles := &fakeProfileStore{
		byID: map[int64]*domain.Profile{
			1: {ID: 1, DisplayName: "u", Age: 27, Gender: "male", VIP: true, IsActive: true},
		},
		updated: map[int64][2]float64{},
	}
	gw := &fakeGeoWriter{upserts: map[int64]map[string]string{}, removed: map[int64]bool{}}
	inv := &fakeInvalidator{}
	vis := &fakeVisibility{state: map[int64]bool{}}
	uc := NewLocationUseCase(profiles, gw, inv, vis, zap.NewNop())
	return uc, profiles, gw, inv, vis
}

func TestUpdateLocationSyncsIndexAndInvalidatesCache(t *testing.T) {
	uc, profiles, gw, inv, _ := newFixture()

	require.NoError(t, uc.UpdateLocation(context.Background(), 1, 55.75, 37.61))

	assert.Equal(t, [2]float64{55.75, 37.61}, profiles.updated[1])
	require.Contains(t, gw.upserts, int64(1))
	assert.Equal(t, map[string]string{"age": "27", "gender": "male", "vip": "true"}, gw.upserts[1])
	assert.Equal(t, []int64{1}, inv.calls)
}

func TestUpdateLocationRejectsInvalidCoordinates(t *testing.T) {
	uc, profiles, _, _, _ := newFixture()

	err := uc.UpdateLocation(context.Background(), 1, 91, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
	assert.Empty(t, profiles.updated)
}

func TestUpdateLocationPrimaryStoreFailureIsFatal(t *testing.T) {
	uc, profiles, gw, _, _ := newFixture()
	profiles.updateErr = errors.New("pg down")

	err := uc.UpdateLocation(context.Background(), 1, 55.75, 37.61)
	require.Error(t, err)
	assert.Empty(t, gw.upserts, "index must not run ahead of the source of truth")
}

func TestUpdateLocationDegradedIndexStillSucceeds(t *testing.T) {
	uc, profiles, gw, inv, _ := newFixture()
	gw.writeErr = &domain.DependencyDegraded{Dependency: "geo", Cause: errors.New("down")}

	require.NoError(t, uc.UpdateLocation(context.Background(), 1, 55.75, 37.61))
	assert.Equal(t, [2]float64{55.75, 37.61}, profiles.updated[1])
	assert.Equal(t, []int64{1}, inv.calls)
}

func TestSetVisibilityIncognitoRemovesGeoEntry(t *testing.T) {
	uc, _, gw, _, vis := newFixture()

	require.NoError(t, uc.SetVisibility(context.Background(), 1, true))
	assert.True(t, vis.state[1])
	assert.True(t, gw.removed[1])
}

func TestSetVisibilityVisibleRestoresGeoEntry(t *testing.T) {
	uc, profiles, gw, _, vis := newFixture()
	lat, lon := 55.75, 37.61
	profiles.byID[1].LocationLat = &lat
	profiles.byID[1].LocationLon = &lon

	require.NoError(t, uc.SetVisibility(context.Background(), 1, false))
	assert.False(t, vis.state[1])
	assert.Contains(t, gw.upserts, int64(1))
}

func TestSetVisibilityVisibleWithoutCoordinatesSkipsRestore(t *testing.T) {
	uc, _, gw, _, _ := newFixture()

	require.NoError(t, uc.SetVisibility(context.Background(), 1, false))
	assert.Empty(t, gw.upserts)
}

func TestVisibilityReflectsCurrentState(t *testing.T) {
	uc, _, _, _, _ := newFixture()
	ctx := context.Background()

	on, err := uc.Visibility(ctx, 1)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, uc.SetVisibility(ctx, 1, true))
	on, err = uc.Visibility(ctx, 1)
	require.NoError(t, err)
	assert.True(t, on)

	_, err = uc.Visibility(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestSetVisibilityUnknownUser(t *testing.T) {
	uc, _, _, _, _ := newFixture()

	err := uc.SetVisibility(context.Background(), 99, true)
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}
