package push

import (
	"fmt"
	"log/slog"

	"github.com/twoofus/server/internal/config"
)

// NewSender creates a push sender based on configuration
func NewSender(cfg *config.Config) (Sender, error) {
	provider := cfg.PushProvider

	slog.Info("initializing push sender", "provider", provider)

	switch provider {
	case ProviderWebPush:
		if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
			return nil, fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required when using webpush")
		}
		return NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, cfg.PushTTL), nil

	case ProviderLog:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("push provider %q is not allowed in production", provider)
		}
		return LogSender{}, nil

	default:
		return nil, fmt.Errorf("unknown push provider: %s (supported: webpush, log)", provider)
	}
}
