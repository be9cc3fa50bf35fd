package geo

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/domain"
)

const profilesKey = "geo:profiles"

// Index is the Redis-backed geospatial index over profile locations, plus a
// metadata side hash per user. It is a cache of derived state: callers must
// re-validate every returned ID against the profile store, since entries for
// deleted or deactivated users may linger until cleanup.
type Index struct {
	rdb     *redis.Client
	metaTTL time.Duration
	logger  *zap.Logger
}

// Neighbor is a radius query hit.
type Neighbor struct {
	UserID     int64
	DistanceKm float64
}

func NewIndex(rdb *redis.Client, metaTTL time.Duration, logger *zap.Logger) *Index {
	return &Index{rdb: rdb, metaTTL: metaTTL, logger: logger}
}

func metaKey(userID int64) string {
	return fmt.Sprintf("geo:meta:%d", userID)
}

// Upsert replaces the indexed position for userID and refreshes the metadata
// side hash. Metadata lifetime is decoupled from the coordinate entry: it
// expires after metaTTL and is refreshed on every upsert, never on read.
func (ix *Index) Upsert(ctx context.Context, userID int64, lat, lon float64, metadata map[string]string) error {
	if !ValidCoordinates(lat, lon) {
		return fmt.Errorf("%w: lat=%f lon=%f", domain.ErrInvalidCoordinate, lat, lon)
	}

	pipe := ix.rdb.Pipeline()
	pipe.GeoAdd(ctx, profilesKey, &redis.GeoLocation{
		Name:      strconv.FormatInt(userID, 10),
		Longitude: lon,
		Latitude:  lat,
	})
	if len(metadata) > 0 {
		key := metaKey(userID)
		fields := make([]interface{}, 0, len(metadata)*2)
		for k, v := range metadata {
			fields = append(fields, k, v)
		}
		pipe.HSet(ctx, key, fields...)
		pipe.Expire(ctx, key, ix.metaTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Degraded("geo", err)
	}
	return nil
}

// RadiusQuery returns up to limit neighbors within radiusKm of the origin,
// ascending by distance, ties broken by user ID for determinism.
func (ix *Index) RadiusQuery(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]Neighbor, error) {
	if !ValidCoordinates(lat, lon) {
		return nil, fmt.Errorf("%w: lat=%f lon=%f", domain.ErrInvalidCoordinate, lat, lon)
	}

	locs, err := ix.rdb.GeoSearchLocation(ctx, profilesKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lon,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithDist: true,
	}).Result()
	if err != nil {
		return nil, domain.Degraded("geo", err)
	}
	return ix.collectNeighbors(locs), nil
}

// collectNeighbors parses member names into user IDs and orders hits
// ascending by distance, ties broken by user ID for determinism.
func (ix *Index) collectNeighbors(locs []redis.GeoLocation) []Neighbor {
	neighbors := make([]Neighbor, 0, len(locs))
	for _, loc := range locs {
		id, err := strconv.ParseInt(loc.Name, 10, 64)
		if err != nil {
			ix.logger.Warn("skipping non-numeric geo member", zap.String("member", loc.Name))
			continue
		}
		neighbors = append(neighbors, Neighbor{UserID: id, DistanceKm: loc.Dist})
	}
	sort.SliceStable(neighbors, func(i, j int) bool {
		if neighbors[i].DistanceKm != neighbors[j].DistanceKm {
			return neighbors[i].DistanceKm < neighbors[j].DistanceKm
		}
		return neighbors[i].UserID < neighbors[j].UserID
	})
	return neighbors
}

// PointLookup returns the last indexed position for userID.
func (ix *Index) PointLookup(ctx context.Context, userID int64) (lat, lon float64, found bool, err error) {
	pos, err := ix.rdb.GeoPos(ctx, profilesKey, strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return 0, 0, false, domain.Degraded("geo", err)
	}
	if len(pos) == 0 || pos[0] == nil {
		return 0, 0, false, nil
	}
	return pos[0].Latitude, pos[0].Longitude, true, nil
}

// Remove drops the indexed position and metadata. Removing an absent entry
// is not an error.
func (ix *Index) Remove(ctx context.Context, userID int64) error {
	pipe := ix.rdb.Pipeline()
	pipe.ZRem(ctx, profilesKey, strconv.FormatInt(userID, 10))
	pipe.Del(ctx, metaKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Degraded("geo", err)
	}
	return nil
}

// BulkMetadata fetches metadata for many users in a single round trip.
// Users with no (or expired) metadata are absent from the result.
func (ix *Index) BulkMetadata(ctx context.Context, userIDs []int64) (map[int64]map[string]string, error) {
	if len(userIDs) == 0 {
		return map[int64]map[string]string{}, nil
	}

	pipe := ix.rdb.Pipeline()
	cmds := make(map[int64]*redis.MapStringStringCmd, len(userIDs))
	for _, id := range userIDs {
		cmds[id] = pipe.HGetAll(ctx, metaKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, domain.Degraded("geo", err)
	}

	out := make(map[int64]map[string]string, len(userIDs))
	for id, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) > 0 {
			out[id] = fields
		}
	}
	return out, nil
}
