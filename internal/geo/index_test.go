package geo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T, metaTTL time.Duration) (*Index, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewIndex(rdb, metaTTL, zap.NewNop()), mr, rdb
}

func TestUpsertTwiceKeepsOneEntry(t *testing.T) {
	ix, _, rdb := newTestIndex(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, 1, 55.75, 37.61, nil))
	require.NoError(t, ix.Upsert(ctx, 1, 55.75, 37.61, nil))

	n, err := rdb.ZCard(ctx, profilesKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "re-upsert must replace, not duplicate")
}

func TestUpsertMovesEntry(t *testing.T) {
	ix, _, _ := newTestIndex(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, 1, 55.75, 37.61, nil))
	require.NoError(t, ix.Upsert(ctx, 1, 59.93, 30.36, nil))

	lat, lon, found, err := ix.PointLookup(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 59.93, lat, 0.01)
	assert.InDelta(t, 30.36, lon, 0.01)
}

func TestPointLookupUnknownUser(t *testing.T) {
	ix, _, _ := newTestIndex(t, time.Hour)

	_, _, found, err := ix.PointLookup(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMetadataExpiresIndependently(t *testing.T) {
	ix, mr, _ := newTestIndex(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, 1, 55.75, 37.61, map[string]string{"age": "25", "gender": "female"}))

	meta, err := ix.BulkMetadata(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Contains(t, meta, int64(1))
	assert.Equal(t, "25", meta[1]["age"])
	assert.NotContains(t, meta, int64(2))

	mr.FastForward(2 * time.Minute)

	meta, err = ix.BulkMetadata(ctx, []int64{1})
	require.NoError(t, err)
	assert.NotContains(t, meta, int64(1))

	// The coordinate entry outlives its metadata snapshot.
	_, _, found, err := ix.PointLookup(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestRemoveDropsEntryAndMetadata(t *testing.T) {
	ix, _, rdb := newTestIndex(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, 1, 55.75, 37.61, map[string]string{"age": "25"}))
	require.NoError(t, ix.Remove(ctx, 1))

	n, err := rdb.ZCard(ctx, profilesKey).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	meta, err := ix.BulkMetadata(ctx, []int64{1})
	require.NoError(t, err)
	assert.Empty(t, meta)

	// Removing an absent entry is not an error.
	assert.NoError(t, ix.Remove(ctx, 1))
}

func TestCollectNeighborsOrderingAndParsing(t *testing.T) {
	ix := NewIndex(nil, 0, zap.NewNop())

	got := ix.collectNeighbors([]redis.GeoLocation{
		{Name: "9", Dist: 2.5},
		{Name: "4", Dist: 2.5},
		{Name: "bogus", Dist: 1.0},
		{Name: "7", Dist: 0.4},
	})

	require.Len(t, got, 3, "non-numeric members are skipped")
	assert.Equal(t, []Neighbor{
		{UserID: 7, DistanceKm: 0.4},
		{UserID: 4, DistanceKm: 2.5},
		{UserID: 9, DistanceKm: 2.5},
	}, got, "ascending by distance, ties by user ID")
}
