package service

import (
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/twoofus/server/internal/testutil"
)

func TestVerifyJWT(t *testing.T) {
	svc := NewAuthService(testutil.JWTSecret, time.Hour)

	token, _, err := svc.GenerateJWT("alice")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	userID, err := svc.VerifyJWT(token)
	if err != nil || userID != "alice" {
		t.Fatalf("VerifyJWT = %q, %v", userID, err)
	}

	other := NewAuthService("another-secret", time.Hour)
	if _, err := other.VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret got %v, want ErrInvalidToken", err)
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	signed, _ := expired.SignedString([]byte(testutil.JWTSecret))
	if _, err := svc.VerifyJWT(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token got %v, want ErrInvalidToken", err)
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"})
	signed, _ = noExp.SignedString([]byte(testutil.JWTSecret))
	if _, err := svc.VerifyJWT(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("token without exp got %v, want ErrInvalidToken", err)
	}
}

func TestWebhookVerifier(t *testing.T) {
	verifier, err := NewWebhookVerifier("whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw")
	if err != nil {
		t.Fatalf("NewWebhookVerifier failed: %v", err)
	}

	payload := []byte(`{"job":"scan-reminders"}`)
	now := time.Now()
	signature, err := verifier.Sign("msg_1", now, payload)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	headers := http.Header{}
	headers.Set("webhook-id", "msg_1")
	headers.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	headers.Set("webhook-signature", signature)

	if err := verifier.Verify(payload, headers); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
	if err := verifier.Verify([]byte(`{"job":"other"}`), headers); err == nil {
		t.Error("tampered payload verified")
	}

	if _, err := NewWebhookVerifier(""); err == nil {
		t.Error("empty secret accepted")
	}
}
