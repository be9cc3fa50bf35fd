package filter

import (
	"sort"
	"strings"

	"github.com/amora-app/amora-backend/internal/domain"
	"github.com/amora-app/amora-backend/internal/geo"
)

// Origin is the requester's position, used for exact distance annotation and
// the distance post-filter.
type Origin struct {
	Lat float64
	Lon float64
}

// Engine applies a FilterSpec over a candidate set. Predicates run
// cheapest-first (scalar ranges, then enum membership, then interest
// intersection, then haversine distance); the ordering is a performance
// policy only and never changes the result.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Apply filters and annotates candidates. Absent spec fields impose no
// constraint. The returned slice is sorted VIP-first (stable), then by
// last-activity descending; pagination happens downstream.
func (e *Engine) Apply(candidates []*domain.Profile, spec *domain.FilterSpec, origin *Origin) ([]*domain.AnnotatedProfile, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := make([]*domain.AnnotatedProfile, 0, len(candidates))
	for _, p := range candidates {
		annotated, ok := e.evaluate(p, spec, origin)
		if ok {
			out = append(out, annotated)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Profile, out[j].Profile
		if a.VIP != b.VIP {
			return a.VIP
		}
		return a.LastActiveAt.After(b.LastActiveAt)
	})
	return out, nil
}

func (e *Engine) evaluate(p *domain.Profile, spec *domain.FilterSpec, origin *Origin) (*domain.AnnotatedProfile, bool) {
	// Scalar ranges.
	if spec.AgeMin != nil && p.Age < *spec.AgeMin {
		return nil, false
	}
	if spec.AgeMax != nil && p.Age > *spec.AgeMax {
		return nil, false
	}
	if spec.HeightMin != nil && (p.HeightCm == nil || *p.HeightCm < *spec.HeightMin) {
		return nil, false
	}
	if spec.HeightMax != nil && (p.HeightCm == nil || *p.HeightCm > *spec.HeightMax) {
		return nil, false
	}

	// Flags.
	if spec.VerifiedOnly && !p.Verified {
		return nil, false
	}
	if spec.WithPhoto && !p.HasPhoto {
		return nil, false
	}
	if spec.Gender != nil && p.Gender != *spec.Gender {
		return nil, false
	}

	// Lifestyle enum membership.
	if !memberOf(spec.Smoking, p.Smoking) {
		return nil, false
	}
	if !memberOf(spec.Drinking, p.Drinking) {
		return nil, false
	}
	if !memberOf(spec.Education, p.Education) {
		return nil, false
	}
	if !memberOf(spec.LookingFor, p.LookingFor) {
		return nil, false
	}
	if !memberOf(spec.Children, p.Children) {
		return nil, false
	}

	// Interest intersection: non-exclusive, at least one shared tag passes.
	var shared []string
	if len(spec.Interests) > 0 {
		shared = intersect(spec.Interests, p.Interests)
		if len(shared) == 0 {
			return nil, false
		}
	}

	// Exact distance, computed even when the geo index already produced an
	// approximate one (the radius query may have been skipped entirely on
	// the fallback path).
	var distanceKm *float64
	if origin != nil && p.HasCoordinates() {
		d := geo.Distance(origin.Lat, origin.Lon, *p.LocationLat, *p.LocationLon)
		distanceKm = &d
	}
	if spec.HasDistance() {
		if distanceKm == nil {
			return nil, false
		}
		if *distanceKm > *spec.MaxDistanceKm {
			return nil, false
		}
	}

	return &domain.AnnotatedProfile{
		Profile:         p,
		DistanceKm:      distanceKm,
		SharedInterests: shared,
	}, true
}

func memberOf(allowed []string, value *string) bool {
	if len(allowed) == 0 {
		return true
	}
	if value == nil {
		return false
	}
	for _, v := range allowed {
		if v == *value {
			return true
		}
	}
	return false
}

func intersect(wanted, have []string) []string {
	if len(wanted) == 0 || len(have) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(have))
	for _, h := range have {
		set[strings.ToLower(h)] = struct{}{}
	}
	var shared []string
	for _, w := range wanted {
		if _, ok := set[w]; ok {
			shared = append(shared, w)
		}
	}
	return shared
}
