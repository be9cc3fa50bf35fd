package domain

import "time"

// Match is an unordered user pair stored with UserAID < UserBID so the
// uniqueness constraint holds regardless of which direction completed it.
type Match struct {
	ID        int64     `json:"id" db:"id"`
	UserAID   int64     `json:"user_a_id" db:"user_a_id"`
	UserBID   int64     `json:"user_b_id" db:"user_b_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NormalizePair orders two user IDs for the matches uniqueness constraint.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

func (m *Match) HasUser(userID int64) bool {
	return m.UserAID == userID || m.UserBID == userID
}

func (m *Match) OtherUserID(userID int64) (int64, bool) {
	if m.UserAID == userID {
		return m.UserBID, true
	}
	if m.UserBID == userID {
		return m.UserAID, true
	}
	return 0, false
}
