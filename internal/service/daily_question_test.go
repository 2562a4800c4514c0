package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twoofus/server/internal/testutil"
)

func TestAssignAllOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedQuestions(t, f.db, 5)
	testutil.CreateTestRoom(t, f.db, "alice", "bob")
	testutil.CreateTestRoom(t, f.db, "carol")

	svc := f.dailyQuestionService(60)
	now := day("2024-03-10T09:00:00Z")

	first, err := svc.AssignAll(ctx, now)
	if err != nil {
		t.Fatalf("AssignAll failed: %v", err)
	}
	if first.DateKey != "2024-03-10" || first.Rooms != 2 || first.Added != 2 || first.Skipped != 0 {
		t.Errorf("first run = %+v", first)
	}

	second, err := svc.AssignAll(ctx, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("AssignAll failed: %v", err)
	}
	if second.Added != 0 || second.Skipped != 2 || second.Failed != 0 {
		t.Errorf("second run = %+v, want everything skipped", second)
	}
}

func TestAssignAvoidsRecentQuestions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedQuestions(t, f.db, 100)
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")

	const window = 60
	svc := f.dailyQuestionService(window)
	start := day("2024-01-01T12:00:00Z")

	var assigned []string
	for i := 0; i < 90; i++ {
		now := start.AddDate(0, 0, i)
		if _, err := svc.AssignAll(ctx, now); err != nil {
			t.Fatalf("day %d: AssignAll failed: %v", i, err)
		}
		dq, err := f.dailies.ByRoomAndDate(ctx, roomID, f.calendar.Key(now))
		if err != nil {
			t.Fatalf("day %d: question not stored: %v", i, err)
		}
		assigned = append(assigned, dq.QuestionID)
	}

	for i, id := range assigned {
		lo := max(0, i-window)
		for j := lo; j < i; j++ {
			if assigned[j] == id {
				t.Fatalf("day %d repeats question from day %d within the window", i, j)
			}
		}
	}
}

func TestAssignFallsBackWhenPoolExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedQuestions(t, f.db, 3)
	testutil.CreateTestRoom(t, f.db, "alice", "bob")

	svc := f.dailyQuestionService(60)
	start := day("2024-01-01T12:00:00Z")
	for i := 0; i < 5; i++ {
		summary, err := svc.AssignAll(ctx, start.AddDate(0, 0, i))
		if err != nil {
			t.Fatalf("day %d: AssignAll failed: %v", i, err)
		}
		if summary.Added != 1 {
			t.Errorf("day %d: added %d, want 1", i, summary.Added)
		}
	}
}

func TestAssignAllEmptyPool(t *testing.T) {
	f := newFixture(t)
	testutil.CreateTestRoom(t, f.db, "alice")

	_, err := f.dailyQuestionService(60).AssignAll(context.Background(), time.Now())
	if !errors.Is(err, ErrEmptyQuestionPool) {
		t.Errorf("got %v, want ErrEmptyQuestionPool", err)
	}
}

func TestTodayAssignsOnRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.SeedQuestions(t, f.db, 10)
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")

	svc := f.dailyQuestionService(60)
	now := day("2024-05-01T08:00:00Z")

	first, err := svc.Today(ctx, roomID, now)
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if first.DateKey != "2024-05-01" || first.Text == "" {
		t.Errorf("unexpected question %+v", first)
	}

	again, err := svc.Today(ctx, roomID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("second read returned %s, want %s", again.ID, first.ID)
	}

	summary, err := svc.AssignAll(ctx, now)
	if err != nil {
		t.Fatalf("AssignAll failed: %v", err)
	}
	if summary.Added != 0 || summary.Skipped != 1 {
		t.Errorf("job after read = %+v, want skipped", summary)
	}
}

func TestBusinessDayCutoff(t *testing.T) {
	f := newFixture(t)
	f.calendar = mustCalendar(t, "America/New_York", 4)
	ctx := context.Background()
	testutil.SeedQuestions(t, f.db, 10)
	roomID := testutil.CreateTestRoom(t, f.db, "alice", "bob")

	svc := f.dailyQuestionService(60)
	// 02:30 in New York on March 11 still belongs to March 10.
	dq, err := svc.Today(ctx, roomID, day("2024-03-11T06:30:00Z"))
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if dq.DateKey != "2024-03-10" {
		t.Errorf("date key = %s, want 2024-03-10", dq.DateKey)
	}
}
