package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/twoofus/server/internal/service"
)

// VerifyWebhook rejects requests without a valid Standard Webhooks signature.
// The body is restored for the handler after verification.
func VerifyWebhook(verifier *service.WebhookVerifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				ErrorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body.Close()

			err = verifier.Verify(payload, r.Header)
			if err != nil {
				slog.Warn("webhook signature rejected",
					"path", r.URL.Path,
					"webhook_id", r.Header.Get("webhook-id"),
					"error", err,
				)
				ErrorResponse(w, http.StatusUnauthorized, "invalid webhook signature")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(payload))
			next(w, r)
		}
	}
}
