package service

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/testutil"
)

// fixture wires services against a fresh SQLite database, a fake push
// sender and an in-process realtime hub.
type fixture struct {
	db       *sqlx.DB
	sender   *testutil.FakeSender
	hub      *realtime.Hub
	calendar *datekey.Calendar

	rooms         repository.RoomRepository
	profiles      repository.ProfileRepository
	questions     repository.QuestionRepository
	dailies       repository.DailyQuestionRepository
	answers       repository.AnswerRepository
	reactions     repository.ReactionRepository
	messages      repository.MessageRepository
	events        repository.EventRepository
	tasks         repository.TaskRepository
	milestones    repository.MilestoneRepository
	memories      repository.MemoryRepository
	ideas         repository.DateIdeaRepository
	moods         repository.MoodRepository
	nudges        repository.NudgeRepository
	logs          repository.DailyLogRepository
	notifications repository.NotificationRepository
	subs          repository.PushSubscriptionRepository
	stats         repository.StatsRepository

	notifier *NotificationService
	roomSvc  *RoomService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	f := &fixture{
		db:       conn,
		sender:   testutil.NewFakeSender(),
		hub:      realtime.NewHub(),
		calendar: datekey.New(time.UTC, 0),

		rooms:         repository.NewRoomRepository(conn),
		profiles:      repository.NewProfileRepository(conn),
		questions:     repository.NewQuestionRepository(conn),
		dailies:       repository.NewDailyQuestionRepository(conn),
		answers:       repository.NewAnswerRepository(conn),
		reactions:     repository.NewReactionRepository(conn),
		messages:      repository.NewMessageRepository(conn),
		events:        repository.NewEventRepository(conn),
		tasks:         repository.NewTaskRepository(conn),
		milestones:    repository.NewMilestoneRepository(conn),
		memories:      repository.NewMemoryRepository(conn),
		ideas:         repository.NewDateIdeaRepository(conn),
		moods:         repository.NewMoodRepository(conn),
		nudges:        repository.NewNudgeRepository(conn),
		logs:          repository.NewDailyLogRepository(conn),
		notifications: repository.NewNotificationRepository(conn),
		subs:          repository.NewPushSubscriptionRepository(conn),
		stats:         repository.NewStatsRepository(conn),
	}
	f.notifier = NewNotificationService(f.subs, f.notifications, f.sender, "https://app.test")
	f.roomSvc = NewRoomService(f.rooms, f.profiles, NewEmailService("", "", "https://app.test", "The Two of Us", true))
	return f
}

func (f *fixture) dailyQuestionService(window int) *DailyQuestionService {
	return NewDailyQuestionService(f.rooms, f.questions, f.dailies, f.calendar, window).
		WithRand(rand.New(rand.NewPCG(1, 2)))
}

func (f *fixture) publisher() realtime.Publisher {
	return realtime.NewLocalPublisher(f.hub)
}

func day(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustCalendar(t *testing.T, tz string, cutoff int) *datekey.Calendar {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Skipf("timezone %s unavailable: %v", tz, err)
	}
	return datekey.New(loc, cutoff)
}
