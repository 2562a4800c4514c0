package service

import (
	"fmt"
	"net/http"
	"time"

	standardwebhooks "github.com/standard-webhooks/standard-webhooks/libraries/go"
)

// WebhookVerifier checks Standard Webhooks signatures on cron-triggered
// job requests.
type WebhookVerifier struct {
	wh *standardwebhooks.Webhook
}

// NewWebhookVerifier accepts the secret in either "whsec_<base64>" form or
// as raw bytes.
func NewWebhookVerifier(secret string) (*WebhookVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("webhook secret is empty")
	}

	wh, err := standardwebhooks.NewWebhook(secret)
	if err != nil {
		wh, err = standardwebhooks.NewWebhookRaw([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook verifier: %w", err)
		}
	}
	return &WebhookVerifier{wh: wh}, nil
}

func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) error {
	err := v.wh.Verify(payload, headers)
	if err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}
	return nil
}

// Sign produces the webhook-signature header value for payload. Used by the
// ops CLI when it calls a deployed webhook.
func (v *WebhookVerifier) Sign(msgID string, timestamp time.Time, payload []byte) (string, error) {
	return v.wh.Sign(msgID, timestamp, payload)
}
