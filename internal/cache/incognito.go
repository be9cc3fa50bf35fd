package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/amora-app/amora-backend/internal/domain"
)

// IncognitoStore keeps per-user visibility flags in Redis rather than process
// memory, so the flag survives restarts and is shared across instances.
type IncognitoStore struct {
	rdb *redis.Client
}

func NewIncognitoStore(rdb *redis.Client) *IncognitoStore {
	return &IncognitoStore{rdb: rdb}
}

func incognitoKey(userID int64) string {
	return fmt.Sprintf("visibility:incognito:%d", userID)
}

// Set enables or disables incognito mode for a user.
func (s *IncognitoStore) Set(ctx context.Context, userID int64, on bool) error {
	var err error
	if on {
		err = s.rdb.Set(ctx, incognitoKey(userID), "1", 0).Err()
	} else {
		err = s.rdb.Del(ctx, incognitoKey(userID)).Err()
	}
	if err != nil {
		return domain.Degraded("visibility", err)
	}
	return nil
}

// AnyIncognito checks many users in one pipelined round trip and returns
// the subset currently hidden from discovery.
func (s *IncognitoStore) AnyIncognito(ctx context.Context, userIDs []int64) (map[int64]struct{}, error) {
	if len(userIDs) == 0 {
		return map[int64]struct{}{}, nil
	}
	pipe := s.rdb.Pipeline()
	cmds := make(map[int64]*redis.IntCmd, len(userIDs))
	for _, id := range userIDs {
		cmds[id] = pipe.Exists(ctx, incognitoKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, domain.Degraded("visibility", err)
	}
	hidden := make(map[int64]struct{})
	for id, cmd := range cmds {
		if cmd.Val() > 0 {
			hidden[id] = struct{}{}
		}
	}
	return hidden, nil
}

// IsIncognito reports whether the user is hidden from discovery.
func (s *IncognitoStore) IsIncognito(ctx context.Context, userID int64) (bool, error) {
	n, err := s.rdb.Exists(ctx, incognitoKey(userID)).Result()
	if err != nil {
		return false, domain.Degraded("visibility", err)
	}
	return n > 0, nil
}
