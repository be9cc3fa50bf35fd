package domain

import "time"

type SwipeType string

const (
	SwipeLike      SwipeType = "like"
	SwipeSuperLike SwipeType = "superlike"
	SwipePass      SwipeType = "pass"
)

// Valid reports whether the value is one of the known actions.
func (s SwipeType) Valid() bool {
	switch s {
	case SwipeLike, SwipeSuperLike, SwipePass:
		return true
	}
	return false
}

// Positive reports whether the action counts toward a mutual match.
func (s SwipeType) Positive() bool {
	return s == SwipeLike || s == SwipeSuperLike
}

// SwipeAction is the canonical directional record for an ordered user pair.
// At most one row exists per (FromID, ToID); a repeat swipe overwrites it.
type SwipeAction struct {
	ID        int64     `json:"id" db:"id"`
	FromID    int64     `json:"from_id" db:"from_id"`
	ToID      int64     `json:"to_id" db:"to_id"`
	Action    SwipeType `json:"action" db:"action"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
