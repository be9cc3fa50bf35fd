package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amora-app/amora-backend/internal/domain"
)

// UndoEntry is one record in a user's bounded swipe-undo history.
type UndoEntry struct {
	ToID   int64            `json:"to_id"`
	Action domain.SwipeType `json:"action"`
	At     time.Time        `json:"at"`
}

// UndoLog keeps a short append-only swipe history per user in Redis, distinct
// from the overwrite-based canonical swipe table. Kept external so undo works
// across restarts and horizontally-scaled instances.
type UndoLog struct {
	rdb    *redis.Client
	depth  int
	window time.Duration
}

func NewUndoLog(rdb *redis.Client, depth int, window time.Duration) *UndoLog {
	return &UndoLog{rdb: rdb, depth: depth, window: window}
}

func undoKey(userID int64) string {
	return fmt.Sprintf("swipe:undo:%d", userID)
}

// Push records an action at the head of the user's history, trimming it to
// the retention depth.
func (l *UndoLog) Push(ctx context.Context, userID int64, entry UndoEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := undoKey(userID)
	pipe := l.rdb.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(l.depth-1))
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return domain.Degraded("undo-log", err)
	}
	return nil
}

// PopLatest removes and returns the most recent eligible entry. Entries
// older than the grace window are discarded; the list is newest-first, so a
// stale head means the whole history is stale.
func (l *UndoLog) PopLatest(ctx context.Context, userID int64) (*UndoEntry, error) {
	key := undoKey(userID)
	raw, err := l.rdb.LPop(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNothingToUndo
		}
		return nil, domain.Degraded("undo-log", err)
	}
	var entry UndoEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, domain.ErrNothingToUndo
	}
	if time.Since(entry.At) > l.window {
		l.rdb.Del(ctx, key)
		return nil, domain.ErrNothingToUndo
	}
	return &entry, nil
}
