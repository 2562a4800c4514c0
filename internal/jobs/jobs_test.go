package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/service"
	"github.com/twoofus/server/internal/testutil"
)

func newRunner(t *testing.T) (*Runner, *testutil.FakeSender) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.SeedQuestions(t, db, 5)
	testutil.CreateTestRoom(t, db, "alice", "bob")

	rooms := repository.NewRoomRepository(db)
	sender := testutil.NewFakeSender()
	notifier := service.NewNotificationService(
		repository.NewPushSubscriptionRepository(db),
		repository.NewNotificationRepository(db),
		sender,
		"https://app.test",
	)
	calendar := datekey.New(time.UTC, 0)

	runner := NewRunner(
		service.NewDailyQuestionService(rooms, repository.NewQuestionRepository(db), repository.NewDailyQuestionRepository(db), calendar, 60),
		service.NewReminderService(repository.NewEventRepository(db), repository.NewTaskRepository(db), rooms, notifier, time.UTC, 50),
		service.NewAnniversaryService(rooms, repository.NewProfileRepository(db), notifier, "en"),
	)
	return runner, sender
}

func TestRunByName(t *testing.T) {
	runner, _ := newRunner(t)
	runner.WithClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	summary, err := runner.Run(ctx, AssignDailyQuestion)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	assign, ok := summary.(model.AssignSummary)
	if !ok || assign.DateKey != "2024-06-01" || assign.Added != 1 {
		t.Errorf("summary = %#v", summary)
	}

	for _, name := range []string{ScanReminders, AnniversaryReminders} {
		if _, err := runner.Run(ctx, name); err != nil {
			t.Errorf("%s failed: %v", name, err)
		}
	}

	if _, err := runner.Run(ctx, "defragment"); !errors.Is(err, ErrUnknownJob) {
		t.Errorf("unknown job got %v, want ErrUnknownJob", err)
	}
}
