package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/amora-app/amora-backend/internal/domain"
)

// Direction selects which side of the boundary a page is read from.
type Direction string

const (
	DirectionOlder Direction = "older"
	DirectionNewer Direction = "newer"
)

// ParseDirection maps a query-string value to a Direction, defaulting to
// older for an empty value.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionOlder, "":
		return DirectionOlder, nil
	case DirectionNewer:
		return DirectionNewer, nil
	}
	return "", fmt.Errorf("%w: direction %q", domain.ErrInvalidCursor, s)
}

type cursor struct {
	TS int64 `json:"ts"`
	ID int64 `json:"id"`
}

// Encode packs a (timestamp, id) boundary into an opaque token. The token is
// self-contained: no server-side session state backs it.
func Encode(ts time.Time, id int64) string {
	raw, _ := json.Marshal(cursor{TS: ts.UnixMicro(), ID: id})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode unpacks a token produced by Encode. Malformed or tampered tokens
// fail with ErrInvalidCursor; callers treat that as "start from the
// beginning", not a fatal error.
func Decode(token string) (time.Time, int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	var c cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: %v", domain.ErrInvalidCursor, err)
	}
	if c.ID <= 0 {
		return time.Time{}, 0, fmt.Errorf("%w: non-positive id", domain.ErrInvalidCursor)
	}
	return time.UnixMicro(c.TS).UTC(), c.ID, nil
}

// BuildPage trims rows fetched with limit+1 down to one page. boundary
// extracts the composite sort key of a row; the next cursor points at the
// last row of the returned page.
func BuildPage[T any](rows []T, limit int, boundary func(T) (time.Time, int64)) (page []T, nextCursor string, hasMore bool) {
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
		hasMore = true
	}
	if len(rows) > 0 {
		ts, id := boundary(rows[len(rows)-1])
		nextCursor = Encode(ts, id)
	}
	return rows, nextCursor, hasMore
}
