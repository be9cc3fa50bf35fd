package domain

import "time"

type Profile struct {
	ID           int64      `json:"id" db:"id"`
	DisplayName  string     `json:"display_name" db:"display_name"`
	Age          int        `json:"age" db:"age"`
	Gender       string     `json:"gender" db:"gender"`
	LocationLat  *float64   `json:"location_lat" db:"location_lat"`
	LocationLon  *float64   `json:"location_lon" db:"location_lon"`
	Interests    []string   `json:"interests" db:"interests"`
	HeightCm     *int       `json:"height_cm" db:"height_cm"`
	Smoking      *string    `json:"smoking" db:"smoking"`
	Drinking     *string    `json:"drinking" db:"drinking"`
	Education    *string    `json:"education" db:"education"`
	LookingFor   *string    `json:"looking_for" db:"looking_for"`
	Children     *string    `json:"children" db:"children"`
	Verified     bool       `json:"verified" db:"verified"`
	VIP          bool       `json:"vip" db:"is_vip"`
	HasPhoto     bool       `json:"has_photo" db:"has_photo"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	LastActiveAt time.Time  `json:"last_active_at" db:"last_active_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// HasCoordinates reports whether the profile carries a usable location.
func (p *Profile) HasCoordinates() bool {
	return p.LocationLat != nil && p.LocationLon != nil
}

// AnnotatedProfile is a discovery result entry: the candidate plus the
// per-request computed annotations attached by the filter engine.
type AnnotatedProfile struct {
	Profile         *Profile `json:"profile"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
	SharedInterests []string `json:"shared_interests,omitempty"`
}

// DiscoveryPage is the cacheable result of one discovery request window.
type DiscoveryPage struct {
	Profiles   []*AnnotatedProfile `json:"profiles"`
	Total      int                 `json:"total"`
	Cached     bool                `json:"cached"`
	ProducedAt time.Time           `json:"produced_at"`
}
