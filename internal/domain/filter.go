package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FilterSpec is the declarative, per-request predicate set for discovery.
// Nil / empty fields impose no constraint. A spec is normalized once at the
// edge so equivalent specs produce identical cache fingerprints.
type FilterSpec struct {
	AgeMin        *int     `json:"age_min,omitempty"`
	AgeMax        *int     `json:"age_max,omitempty"`
	Gender        *string  `json:"gender,omitempty"`
	MaxDistanceKm *float64 `json:"max_distance_km,omitempty"`
	HeightMin     *int     `json:"height_min,omitempty"`
	HeightMax     *int     `json:"height_max,omitempty"`
	Smoking       []string `json:"smoking,omitempty"`
	Drinking      []string `json:"drinking,omitempty"`
	Education     []string `json:"education,omitempty"`
	LookingFor    []string `json:"looking_for,omitempty"`
	Children      []string `json:"children,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	VerifiedOnly  bool     `json:"verified_only,omitempty"`
	WithPhoto     bool     `json:"with_photo,omitempty"`
}

// Normalize sorts and dedupes every list field in place. Two specs that
// differ only in list insertion order become identical after normalization.
func (s *FilterSpec) Normalize() {
	s.Smoking = normalizeList(s.Smoking)
	s.Drinking = normalizeList(s.Drinking)
	s.Education = normalizeList(s.Education)
	s.LookingFor = normalizeList(s.LookingFor)
	s.Children = normalizeList(s.Children)
	s.Interests = normalizeList(s.Interests)
	if s.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*s.Gender))
		s.Gender = &g
	}
}

// Validate rejects specs whose ranges are inverted.
func (s *FilterSpec) Validate() error {
	if s.AgeMin != nil && s.AgeMax != nil && *s.AgeMin > *s.AgeMax {
		return fmt.Errorf("%w: age_min %d > age_max %d", ErrInvalidFilterSpec, *s.AgeMin, *s.AgeMax)
	}
	if s.HeightMin != nil && s.HeightMax != nil && *s.HeightMin > *s.HeightMax {
		return fmt.Errorf("%w: height_min %d > height_max %d", ErrInvalidFilterSpec, *s.HeightMin, *s.HeightMax)
	}
	if s.MaxDistanceKm != nil && *s.MaxDistanceKm <= 0 {
		return fmt.Errorf("%w: max_distance_km must be positive", ErrInvalidFilterSpec)
	}
	return nil
}

// HasDistance reports whether a distance predicate is active.
func (s *FilterSpec) HasDistance() bool {
	return s.MaxDistanceKm != nil
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
