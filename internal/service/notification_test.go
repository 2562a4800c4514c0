package service

import (
	"context"
	"errors"
	"testing"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service/push"
	"github.com/twoofus/server/internal/testutil"
)

func TestDispatchCleansGoneEndpoints(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.Subscribe(t, f.db, "alice", "https://push.test/phone")
	testutil.Subscribe(t, f.db, "alice", "https://push.test/old-laptop")
	testutil.Subscribe(t, f.db, "alice", "https://push.test/flaky")
	f.sender.Errors["https://push.test/old-laptop"] = push.ErrGone
	f.sender.Errors["https://push.test/flaky"] = errors.New("connection reset")

	result, err := f.notifier.Dispatch(ctx, "alice", model.PushMessage{Title: "Hi", URL: "/rooms/1"})
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if result.Sent != 1 || result.Failed != 2 || result.Cleaned != 1 {
		t.Errorf("result = %+v", result)
	}

	subs, err := f.subs.ByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ByUser failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("%d subscriptions left, want 2", len(subs))
	}
	for _, sub := range subs {
		if sub.Endpoint == "https://push.test/old-laptop" {
			t.Error("gone endpoint was not removed")
		}
	}

	if got := f.sender.Sent[0].Message.URL; got != "https://app.test/rooms/1" {
		t.Errorf("url = %q, want absolute", got)
	}
}

func TestNotifyStoresInboxAndBadge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.Subscribe(t, f.db, "bob", "https://push.test/bob")

	for i := 0; i < 3; i++ {
		if _, err := f.notifier.Notify(ctx, "bob", nil, model.NotifKindMessage, model.PushMessage{Title: "New message"}); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
	}

	if badge := f.sender.Sent[2].Message.Badge; badge != 3 {
		t.Errorf("badge = %d, want 3", badge)
	}

	items, unread, err := f.notifier.Inbox(ctx, "bob")
	if err != nil {
		t.Fatalf("Inbox failed: %v", err)
	}
	if len(items) != 3 || unread != 3 {
		t.Fatalf("inbox = %d items, %d unread", len(items), unread)
	}

	if err := f.notifier.MarkRead(ctx, "bob", items[0].ID); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	n, err := f.notifier.MarkAllRead(ctx, "bob")
	if err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	if n != 2 {
		t.Errorf("MarkAllRead updated %d, want 2", n)
	}
}

func TestSubscribeValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bad := []*model.PushSubscription{
		{UserID: "alice", Endpoint: "", P256dh: "k", Auth: "a"},
		{UserID: "alice", Endpoint: "http://push.test/x", P256dh: "k", Auth: "a"},
		{UserID: "alice", Endpoint: "https://push.test/x", P256dh: "", Auth: "a"},
	}
	for _, sub := range bad {
		if err := f.notifier.Subscribe(ctx, sub); !errors.Is(err, ErrInvalidSubscription) {
			t.Errorf("Subscribe(%q) = %v, want ErrInvalidSubscription", sub.Endpoint, err)
		}
	}

	good := &model.PushSubscription{UserID: "alice", Endpoint: "https://push.test/x", P256dh: "k", Auth: "a"}
	if err := f.notifier.Subscribe(ctx, good); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if err := f.notifier.Subscribe(ctx, good); err != nil {
		t.Fatalf("re-Subscribe failed: %v", err)
	}
	if err := f.notifier.Unsubscribe(ctx, "alice", good.Endpoint); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}
	subs, _ := f.subs.ByUser(ctx, "alice")
	if len(subs) != 0 {
		t.Errorf("%d subscriptions left after unsubscribe", len(subs))
	}
}
