package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/twoofus/server/internal/model"
)

type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        time.Duration
	client     *http.Client
}

func NewWebPushSender(publicKey, privateKey, subscriber string, ttl time.Duration) *WebPushSender {
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		ttl:        ttl,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub *model.PushSubscription, msg model.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			Auth:   sub.Auth,
			P256dh: sub.P256dh,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             int(s.ttl.Seconds()),
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	return classify(resp.StatusCode, resp.Body)
}

func classify(status int, body io.Reader) error {
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return ErrGone
	case status >= 200 && status < 300:
		return nil
	default:
		detail, _ := io.ReadAll(io.LimitReader(body, 512))
		return fmt.Errorf("push service returned %d: %s", status, detail)
	}
}

// GenerateKeys creates a new VAPID key pair.
func GenerateKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	return publicKey, privateKey, err
}
