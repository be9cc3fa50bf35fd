package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amora-app/amora-backend/internal/domain"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestFingerprintStableAcrossListOrder(t *testing.T) {
	a := &domain.FilterSpec{
		AgeMin:    intPtr(18),
		AgeMax:    intPtr(30),
		Interests: []string{"music", "hiking", "films"},
		Smoking:   []string{"never", "sometimes"},
	}
	b := &domain.FilterSpec{
		AgeMin:    intPtr(18),
		AgeMax:    intPtr(30),
		Interests: []string{"Hiking", "films", "MUSIC"},
		Smoking:   []string{"sometimes", "never"},
	}
	a.Normalize()
	b.Normalize()

	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprintDistinguishesSpecs(t *testing.T) {
	base := &domain.FilterSpec{AgeMin: intPtr(18), AgeMax: intPtr(30)}
	base.Normalize()

	variants := []*domain.FilterSpec{
		{AgeMin: intPtr(18), AgeMax: intPtr(35)},
		{AgeMin: intPtr(18), AgeMax: intPtr(30), VerifiedOnly: true},
		{AgeMin: intPtr(18), AgeMax: intPtr(30), MaxDistanceKm: floatPtr(10)},
		{AgeMin: intPtr(18), AgeMax: intPtr(30), Interests: []string{"music"}},
	}
	for i, v := range variants {
		v.Normalize()
		assert.NotEqual(t, Fingerprint(base), Fingerprint(v), "variant %d", i)
	}
}

func TestFingerprintFieldPositionsAreUnambiguous(t *testing.T) {
	// A value in one list must not collide with the same value in another.
	a := &domain.FilterSpec{Smoking: []string{"never"}}
	b := &domain.FilterSpec{Drinking: []string{"never"}}
	a.Normalize()
	b.Normalize()

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestKeyIsScopedToRequester(t *testing.T) {
	spec := &domain.FilterSpec{}
	fp := Fingerprint(spec)

	k1 := Key(7, fp, 0, 20)
	k2 := Key(8, fp, 0, 20)
	assert.NotEqual(t, k1, k2)
	assert.Contains(t, k1, "disc:7:")

	// Different windows of the same query cache separately.
	assert.NotEqual(t, Key(7, fp, 0, 20), Key(7, fp, 20, 20))
}
