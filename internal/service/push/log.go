package push

import (
	"context"
	"log/slog"

	"github.com/twoofus/server/internal/model"
)

// LogSender logs messages instead of delivering them. Used in development.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, sub *model.PushSubscription, msg model.PushMessage) error {
	slog.Info("push sent (dev mode)",
		"user_id", sub.UserID,
		"endpoint", sub.Endpoint,
		"title", msg.Title,
		"url", msg.URL,
		"tag", msg.Tag,
		"badge", msg.Badge,
	)
	return nil
}
