package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int             { return &v }
func strPtr(v string) *string       { return &v }
func floatPtr(v float64) *float64   { return &v }

func TestFilterSpecNormalize(t *testing.T) {
	spec := &FilterSpec{
		Interests: []string{"Hiking", "music", "hiking", " Music ", ""},
		Smoking:   []string{"never", "NEVER"},
		Gender:    strPtr(" Female "),
	}
	spec.Normalize()

	assert.Equal(t, []string{"hiking", "music"}, spec.Interests)
	assert.Equal(t, []string{"never"}, spec.Smoking)
	assert.Equal(t, "female", *spec.Gender)
}

func TestFilterSpecNormalizeEmptyListsBecomeNil(t *testing.T) {
	spec := &FilterSpec{Interests: []string{"", "  "}}
	spec.Normalize()
	assert.Nil(t, spec.Interests)
}

func TestFilterSpecValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		spec := &FilterSpec{AgeMin: intPtr(18), AgeMax: intPtr(30)}
		require.NoError(t, spec.Validate())
	})

	t.Run("inverted age range", func(t *testing.T) {
		spec := &FilterSpec{AgeMin: intPtr(40), AgeMax: intPtr(20)}
		assert.ErrorIs(t, spec.Validate(), ErrInvalidFilterSpec)
	})

	t.Run("inverted height range", func(t *testing.T) {
		spec := &FilterSpec{HeightMin: intPtr(190), HeightMax: intPtr(160)}
		assert.ErrorIs(t, spec.Validate(), ErrInvalidFilterSpec)
	})

	t.Run("non-positive distance", func(t *testing.T) {
		spec := &FilterSpec{MaxDistanceKm: floatPtr(0)}
		assert.ErrorIs(t, spec.Validate(), ErrInvalidFilterSpec)
	})

	t.Run("empty spec imposes nothing", func(t *testing.T) {
		require.NoError(t, (&FilterSpec{}).Validate())
	})
}

func TestNormalizePair(t *testing.T) {
	a, b := NormalizePair(9, 3)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(9), b)

	a, b = NormalizePair(3, 9)
	assert.Equal(t, int64(3), a)
	assert.Equal(t, int64(9), b)
}

func TestSwipeType(t *testing.T) {
	assert.True(t, SwipeLike.Valid())
	assert.True(t, SwipeSuperLike.Positive())
	assert.False(t, SwipePass.Positive())
	assert.False(t, SwipeType("wink").Valid())
}

func TestDependencyDegraded(t *testing.T) {
	err := Degraded("geo", assert.AnError)
	assert.True(t, IsDegraded(err))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, IsDegraded(assert.AnError))
}
