package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/testutil"
)

func TestJournalWriteLogReplacesSameDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")
	svc := NewJournalService(f.logs, f.moods, f.publisher(), f.calendar)

	now := day("2024-04-03T09:00:00Z")
	first, err := svc.WriteLog(ctx, roomID, "alice", "morning", now)
	if err != nil {
		t.Fatalf("WriteLog failed: %v", err)
	}
	second, err := svc.WriteLog(ctx, roomID, "alice", "evening", now.Add(10*time.Hour))
	if err != nil {
		t.Fatalf("WriteLog failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second write got id %s, want the stored %s", second.ID, first.ID)
	}

	logs, err := svc.Logs(ctx, roomID, "2024-04-03", "2024-04-03")
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Body != "evening" {
		t.Errorf("logs = %+v", logs)
	}
}

func TestJournalCheckIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")
	svc := NewJournalService(f.logs, f.moods, f.publisher(), f.calendar)
	now := day("2024-04-03T09:00:00Z")

	if _, err := svc.CheckIn(ctx, roomID, "alice", "ecstatic", "", now); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown mood got %v, want ErrInvalidInput", err)
	}
	if _, err := svc.CheckIn(ctx, roomID, "alice", model.MoodLow, "tired", now); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	if _, err := svc.CheckIn(ctx, roomID, "alice", model.MoodGood, "", now.Add(time.Hour)); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	moods, err := svc.Moods(ctx, roomID, now)
	if err != nil {
		t.Fatalf("Moods failed: %v", err)
	}
	if len(moods) != 1 || moods[0].Mood != model.MoodGood {
		t.Errorf("moods = %+v", moods)
	}
}

func TestNudgeSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")
	testutil.Subscribe(t, f.db, "bob", "https://push.test/bob")
	svc := NewNudgeService(f.nudges, f.roomSvc, f.notifier, f.publisher(), f.calendar)

	events, unsubscribe := f.hub.Subscribe(roomID)
	defer unsubscribe()

	now := day("2024-04-03T09:00:00Z")
	nudge, err := svc.Send(ctx, roomID, "alice", "🥰", "", now)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if nudge.RecipientID != "bob" || nudge.DateKey != "2024-04-03" {
		t.Errorf("nudge = %+v", nudge)
	}

	select {
	case ev := <-events:
		if ev.Type != EventNudge {
			t.Errorf("event type %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("no realtime event for the nudge")
	}

	if f.sender.Count() != 1 || f.sender.Sent[0].Message.Body != "Your partner is thinking of you." {
		t.Errorf("push = %+v", f.sender.Sent)
	}

	if _, err := svc.Send(ctx, roomID, "alice", "not an emoji", "", now); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad emoji got %v, want ErrInvalidInput", err)
	}

	solo := testutil.CreateTestRoom(t, f.db, "carol")
	if _, err := svc.Send(ctx, solo, "carol", "👋", "", now); !errors.Is(err, ErrNoPartner) {
		t.Errorf("solo room got %v, want ErrNoPartner", err)
	}
}
