package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/testutil"
)

func TestMergeFeed(t *testing.T) {
	base := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)
	items := []model.FeedItem{
		{Type: model.FeedTypeNudge, ID: "n1", DateKey: "2024-04-02", CreatedAt: base},
		{Type: model.FeedTypeJournal, ID: "j-old", DateKey: "2024-04-02", CreatedAt: base},
		{Type: model.FeedTypeQuestion, ID: "q1", DateKey: "2024-04-01", CreatedAt: base},
		{Type: model.FeedTypeJournal, ID: "j-new", DateKey: "2024-04-02", CreatedAt: base.Add(time.Hour)},
		{Type: model.FeedTypeQuestion, ID: "q2", DateKey: "2024-04-02", CreatedAt: base},
		{Type: model.FeedTypeEvent, ID: "e1", DateKey: "2024-04-03", CreatedAt: base},
	}

	got := MergeFeed(items)
	want := []string{"e1", "q2", "j-new", "j-old", "n1", "q1"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s (order %v)", i, got[i].ID, id, ids(got))
		}
	}
}

func ids(items []model.FeedItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestFeedPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	questions := testutil.SeedQuestions(t, f.db, 3)
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")
	for i, key := range []string{"2024-04-01", "2024-04-02", "2024-04-03"} {
		testutil.AssignQuestion(t, f.db, roomID, key, questions[i])
	}

	now := day("2024-04-03T20:00:00Z")
	journal := NewJournalService(f.logs, f.moods, f.publisher(), f.calendar)
	if _, err := journal.WriteLog(ctx, roomID, "alice", "A **good** day", now); err != nil {
		t.Fatalf("WriteLog failed: %v", err)
	}
	if err := f.nudges.Create(ctx, &model.Nudge{RoomID: roomID, SenderID: "bob", RecipientID: "alice", Emoji: "👋", DateKey: "2024-04-02"}); err != nil {
		t.Fatalf("Failed to create nudge: %v", err)
	}
	if err := f.memories.Create(ctx, &model.Memory{RoomID: roomID, CreatedBy: "bob", Title: "First date", HappenedOn: "2024-04-01"}); err != nil {
		t.Fatalf("Failed to create memory: %v", err)
	}

	svc := NewFeedService(FeedRepositories{
		Dailies:    f.dailies,
		Logs:       f.logs,
		Nudges:     f.nudges,
		Events:     f.events,
		Tasks:      f.tasks,
		Memories:   f.memories,
		Milestones: f.milestones,
		Ideas:      f.ideas,
	}, nil, f.calendar, 2)

	first, err := svc.Page(ctx, roomID, "", now)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if first.Done || first.NextBefore != "2024-04-02" {
		t.Errorf("first page done=%v next=%q", first.Done, first.NextBefore)
	}
	var types []string
	for _, item := range first.Items {
		types = append(types, item.DateKey+"/"+item.Type)
	}
	want := "2024-04-03/question 2024-04-03/journal 2024-04-02/question 2024-04-02/nudge"
	if strings.Join(types, " ") != want {
		t.Errorf("first page = %v", types)
	}

	group, ok := first.Items[1].Data.(*model.JournalGroup)
	if !ok || !strings.Contains(group.HTML, "<strong>good</strong>") {
		t.Errorf("journal data = %+v", first.Items[1].Data)
	}

	second, err := svc.Page(ctx, roomID, first.NextBefore, now)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if !second.Done || len(second.Items) != 2 {
		t.Fatalf("second page done=%v items=%d", second.Done, len(second.Items))
	}
	if second.Items[0].Type != model.FeedTypeQuestion || second.Items[1].Type != model.FeedTypeMemory {
		t.Errorf("second page order = %s, %s", second.Items[0].Type, second.Items[1].Type)
	}
}
