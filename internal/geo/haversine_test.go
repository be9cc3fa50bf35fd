package geo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/amora-app/amora-backend/internal/domain"
)

func TestDistanceKnownPairs(t *testing.T) {
	// Moscow center to Moscow State University, roughly 9.2 km.
	d := Distance(55.7558, 37.6173, 55.7026, 37.5306)
	assert.InDelta(t, 8.2, d, 1.5)

	// Same point.
	assert.InDelta(t, 0, Distance(55.75, 37.61, 55.75, 37.61), 0.0001)

	// Moscow to Saint Petersburg, roughly 634 km.
	d = Distance(55.7558, 37.6173, 59.9311, 30.3609)
	assert.InDelta(t, 634, d, 10)
}

func TestDistanceSymmetry(t *testing.T) {
	d1 := Distance(55.75, 37.61, 59.93, 30.36)
	d2 := Distance(59.93, 30.36, 55.75, 37.61)
	assert.InDelta(t, d1, d2, 0.0001)
}

func TestValidCoordinates(t *testing.T) {
	assert.True(t, ValidCoordinates(0, 0))
	assert.True(t, ValidCoordinates(-90, 180))
	assert.False(t, ValidCoordinates(90.1, 0))
	assert.False(t, ValidCoordinates(0, -180.5))
}

func TestIndexRejectsInvalidCoordinates(t *testing.T) {
	// Validation happens before any backend call, so no client is needed.
	ix := NewIndex(nil, 0, zap.NewNop())

	err := ix.Upsert(context.Background(), 1, 91, 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)

	_, err = ix.RadiusQuery(context.Background(), 0, 181, 10, 5)
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
}
