package service

import (
	"context"
	"strings"
	"testing"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/testutil"
)

func TestReminderFor(t *testing.T) {
	tests := []struct {
		anniv string
		today string
		kind  string
		years int
		ok    bool
	}{
		{"2020-06-15", "2024-06-08", model.ReminderSevenDays, 4, true},
		{"2020-06-15", "2024-06-14", model.ReminderOneDay, 4, true},
		{"2020-06-15", "2024-06-15", model.ReminderToday, 4, true},
		{"2020-06-15", "2024-06-10", "", 4, false},
		{"2020-06-15", "2024-06-16", "", 5, false},
		{"2020-01-03", "2023-12-27", model.ReminderSevenDays, 4, true},
		{"2020-02-29", "2023-02-28", model.ReminderToday, 3, true},
		{"2020-02-29", "2024-02-29", model.ReminderToday, 4, true},
		{"2024-06-15", "2024-06-15", "", 0, false},
		{"2024-06-15", "2025-06-08", model.ReminderSevenDays, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.anniv+"_"+tt.today, func(t *testing.T) {
			anniv, _ := datekey.Parse(tt.anniv)
			today, _ := datekey.Parse(tt.today)

			kind, years, _, ok := ReminderFor(anniv, today)
			if ok != tt.ok || kind != tt.kind {
				t.Fatalf("got (%q, %v), want (%q, %v)", kind, ok, tt.kind, tt.ok)
			}
			if ok && years != tt.years {
				t.Errorf("years = %d, want %d", years, tt.years)
			}
		})
	}
}

func TestAnniversaryMessage(t *testing.T) {
	title, body := anniversaryMessage("de-DE", "en", model.ReminderToday, 4)
	if title != "Alles Gute zum Jahrestag!" || !strings.Contains(body, "4 Jahre") {
		t.Errorf("de message = %q / %q", title, body)
	}

	title, body = anniversaryMessage("not a locale", "en", model.ReminderOneDay, 1)
	if title != "Your anniversary is tomorrow" || !strings.Contains(body, "1 year") {
		t.Errorf("fallback message = %q / %q", title, body)
	}

	// Unsupported locales use the configured default, not English.
	title, body = anniversaryMessage("ja", "es", model.ReminderToday, 2)
	if title != "¡Feliz aniversario!" || !strings.Contains(body, "2 años") {
		t.Errorf("ja with es default = %q / %q", title, body)
	}
	title, _ = anniversaryMessage("", "de", model.ReminderOneDay, 3)
	if title != "Euer Jahrestag ist morgen" {
		t.Errorf("empty locale with de default = %q", title)
	}
	title, _ = anniversaryMessage("ja", "ja", model.ReminderToday, 1)
	if title != "Happy anniversary!" {
		t.Errorf("unsupported default = %q, want English", title)
	}
}

func TestAnniversaryRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	due := testutil.CreateTestRoom(t, f.db, "alice", "bob")
	testutil.SetAnniversary(t, f.db, due, "2020-06-15")
	other := testutil.CreateTestRoom(t, f.db, "carol", "dave")
	testutil.SetAnniversary(t, f.db, other, "2019-09-01")
	testutil.CreateTestRoom(t, f.db, "erin")

	testutil.Subscribe(t, f.db, "alice", "https://push.test/alice")
	testutil.Subscribe(t, f.db, "bob", "https://push.test/bob")
	testutil.Subscribe(t, f.db, "carol", "https://push.test/carol")

	if err := f.profiles.Upsert(ctx, &model.Profile{UserID: "bob", DisplayName: "Bob", Locale: "fr"}); err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	svc := NewAnniversaryService(f.rooms, f.profiles, f.notifier, "en")
	summary, err := svc.Run(ctx, day("2024-06-08T15:00:00Z"))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Rooms != 2 || summary.Reminders != 1 || summary.Sent != 2 || summary.Failed != 0 {
		t.Errorf("summary = %+v", summary)
	}

	if f.sender.Count() != 2 {
		t.Fatalf("sent %d pushes, want 2", f.sender.Count())
	}
	for _, sent := range f.sender.Sent {
		wantTag := "anniversary-" + due + "-2024-" + model.ReminderSevenDays
		if sent.Message.Tag != wantTag {
			t.Errorf("tag = %q, want %q", sent.Message.Tag, wantTag)
		}
		if sent.Endpoint == "https://push.test/bob" && sent.Message.Title != "Votre anniversaire est dans une semaine" {
			t.Errorf("bob got %q, want the French title", sent.Message.Title)
		}
	}
}
