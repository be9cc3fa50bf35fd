package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is the fire-and-forget surface onto the external notification
// service. Implementations never return errors to callers; delivery
// failures are logged and dropped.
type Notifier interface {
	NotifyLike(ctx context.Context, likedUser, likerUser int64, isSuper bool)
	NotifyMatch(ctx context.Context, userA, userB int64)
}

// LogNotifier is the default implementation used until the real delivery
// service is wired in: it records the event with a delivery ID so downstream
// consumers can correlate.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyLike(_ context.Context, likedUser, likerUser int64, isSuper bool) {
	n.logger.Info("like notification",
		zap.String("event_id", uuid.NewString()),
		zap.Int64("liked_user", likedUser),
		zap.Int64("liker_user", likerUser),
		zap.Bool("is_super", isSuper),
	)
}

func (n *LogNotifier) NotifyMatch(_ context.Context, userA, userB int64) {
	n.logger.Info("match notification",
		zap.String("event_id", uuid.NewString()),
		zap.Int64("user_a", userA),
		zap.Int64("user_b", userB),
	)
}
