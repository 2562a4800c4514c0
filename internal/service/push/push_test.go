package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
		ok      bool
	}{
		{http.StatusCreated, nil, true},
		{http.StatusOK, nil, true},
		{http.StatusGone, ErrGone, false},
		{http.StatusNotFound, ErrGone, false},
		{http.StatusTooManyRequests, nil, false},
		{http.StatusInternalServerError, nil, false},
	}

	for _, tt := range tests {
		err := classify(tt.status, strings.NewReader("detail"))
		if tt.ok {
			if err != nil {
				t.Errorf("status %d: unexpected error %v", tt.status, err)
			}
			continue
		}
		if err == nil {
			t.Errorf("status %d: expected error", tt.status)
			continue
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.wantErr)
		}
		if tt.wantErr == nil && errors.Is(err, ErrGone) {
			t.Errorf("status %d: transient failure reported as gone", tt.status)
		}
	}
}

func TestWebPushSenderGoneEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	public, private, err := GenerateKeys()
	if err != nil {
		t.Fatalf("GenerateKeys failed: %v", err)
	}

	// Browser-side keys for the subscription, generated the same way.
	p256dh, auth := clientKeys(t)

	sender := NewWebPushSender(public, private, "mailto:test@example.com", time.Minute)
	err = sender.Send(context.Background(), &model.PushSubscription{
		Endpoint: srv.URL,
		P256dh:   p256dh,
		Auth:     auth,
	}, model.PushMessage{Title: "hi", Body: "there"})
	if !errors.Is(err, ErrGone) {
		t.Fatalf("expected ErrGone, got %v", err)
	}
}

func TestNewSender(t *testing.T) {
	cfg := &config.Config{AppEnv: "development", PushProvider: ProviderLog}
	sender, err := NewSender(cfg)
	if err != nil {
		t.Fatalf("NewSender failed: %v", err)
	}
	if _, ok := sender.(LogSender); !ok {
		t.Errorf("expected LogSender, got %T", sender)
	}

	cfg.AppEnv = "production"
	if _, err := NewSender(cfg); err == nil {
		t.Error("expected log sender to be rejected in production")
	}

	cfg.PushProvider = "carrier-pigeon"
	if _, err := NewSender(cfg); err == nil {
		t.Error("expected unknown provider error")
	}
}

func clientKeys(t *testing.T) (p256dh, auth string) {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	secret := make([]byte, 16)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("rand failed: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		base64.RawURLEncoding.EncodeToString(secret)
}
