package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	twoofus "github.com/twoofus/server"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/db"
	"github.com/twoofus/server/internal/jobs"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/service"
	"github.com/twoofus/server/internal/service/push"
	"github.com/twoofus/server/internal/storage"
)

const (
	nudgeLimit  = 10
	nudgeWindow = 10 * time.Minute
	tokenExpiry = 24 * time.Hour
)

type App struct {
	Cfg      *config.Config
	DB       *sqlx.DB
	Calendar *datekey.Calendar
	Hub      *realtime.Hub

	AuthService          *service.AuthService
	WebhookVerifier      *service.WebhookVerifier
	EmailService         *service.EmailService
	ProfileService       *service.ProfileService
	RoomService          *service.RoomService
	QuestionBankService  *service.QuestionBankService
	DailyQuestionService *service.DailyQuestionService
	AnswerService        *service.AnswerService
	NotificationService  *service.NotificationService
	ReminderService      *service.ReminderService
	AnniversaryService   *service.AnniversaryService
	ActivityService      *service.ActivityService
	FeedService          *service.FeedService
	PlannerService       *service.PlannerService
	JournalService       *service.JournalService
	NudgeService         *service.NudgeService

	Jobs *jobs.Runner
}

// Options adjust how New wires the container.
type Options struct {
	// SkipMigrations leaves the schema alone; the CLI migrates explicitly.
	SkipMigrations bool
	// Sender replaces the configured push sender.
	Sender push.Sender
}

// NudgeLimit returns the per-user nudge rate limit.
func (a *App) NudgeLimit() (int, time.Duration) {
	return nudgeLimit, nudgeWindow
}

func New(cfg *config.Config, opts ...Options) (*App, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	if !opt.SkipMigrations {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %v", err)
		}
	}

	a, err := build(cfg, database, opt)
	if err != nil {
		database.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB wires the container on an open, migrated database.
func NewWithDB(cfg *config.Config, database *sqlx.DB, opts ...Options) (*App, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}
	return build(cfg, database, opt)
}

func build(cfg *config.Config, database *sqlx.DB, opt Options) (*App, error) {
	calendar := datekey.New(cfg.Location(), cfg.DayCutoffHour)
	hub := realtime.NewHub()

	// Repositories
	roomRepository := repository.NewRoomRepository(database)
	profileRepository := repository.NewProfileRepository(database)
	questionRepository := repository.NewQuestionRepository(database)
	dailyQuestionRepository := repository.NewDailyQuestionRepository(database)
	answerRepository := repository.NewAnswerRepository(database)
	reactionRepository := repository.NewReactionRepository(database)
	messageRepository := repository.NewMessageRepository(database)
	eventRepository := repository.NewEventRepository(database)
	taskRepository := repository.NewTaskRepository(database)
	milestoneRepository := repository.NewMilestoneRepository(database)
	memoryRepository := repository.NewMemoryRepository(database)
	dateIdeaRepository := repository.NewDateIdeaRepository(database)
	moodRepository := repository.NewMoodRepository(database)
	nudgeRepository := repository.NewNudgeRepository(database)
	dailyLogRepository := repository.NewDailyLogRepository(database)
	notificationRepository := repository.NewNotificationRepository(database)
	subscriptionRepository := repository.NewPushSubscriptionRepository(database)
	statsRepository := repository.NewStatsRepository(database)

	// Storage
	photos, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Push
	sender := opt.Sender
	if sender == nil {
		sender, err = push.NewSender(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize push sender: %v", err)
		}
	}

	// Realtime: Postgres fans events out to every instance, SQLite stays local.
	var publisher realtime.Publisher = realtime.NewLocalPublisher(hub)
	if cfg.IsPostgres() {
		publisher = realtime.NewPostgresPublisher(database, cfg.RealtimeChannel)
	}

	verifier, err := service.NewWebhookVerifier(cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize webhook verifier: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	notificationService := service.NewNotificationService(subscriptionRepository, notificationRepository, sender, cfg.AppURL)
	roomService := service.NewRoomService(roomRepository, profileRepository, emailService)
	dailyQuestionService := service.NewDailyQuestionService(roomRepository, questionRepository, dailyQuestionRepository, calendar, cfg.RecentQuestionWindow)
	reminderService := service.NewReminderService(eventRepository, taskRepository, roomRepository, notificationService, calendar.Location(), cfg.ReminderBatchSize)
	anniversaryService := service.NewAnniversaryService(roomRepository, profileRepository, notificationService, cfg.DefaultLocale)

	a := &App{
		Cfg:      cfg,
		DB:       database,
		Calendar: calendar,
		Hub:      hub,

		AuthService:          service.NewAuthService(cfg.AuthJWTSecret, tokenExpiry),
		WebhookVerifier:      verifier,
		EmailService:         emailService,
		ProfileService:       service.NewProfileService(profileRepository, cfg.DefaultLocale),
		RoomService:          roomService,
		QuestionBankService:  service.NewQuestionBankService(twoofus.QuestionsFS, "content/questions", questionRepository),
		DailyQuestionService: dailyQuestionService,
		AnswerService: service.NewAnswerService(
			dailyQuestionRepository,
			answerRepository,
			reactionRepository,
			messageRepository,
			roomService,
			notificationService,
			publisher,
		),
		NotificationService:  notificationService,
		ReminderService:      reminderService,
		AnniversaryService:   anniversaryService,
		ActivityService:      service.NewActivityService(dailyQuestionRepository, statsRepository, calendar, cfg.ActivityWindowDays),
		FeedService: service.NewFeedService(service.FeedRepositories{
			Dailies:    dailyQuestionRepository,
			Logs:       dailyLogRepository,
			Nudges:     nudgeRepository,
			Events:     eventRepository,
			Tasks:      taskRepository,
			Memories:   memoryRepository,
			Milestones: milestoneRepository,
			Ideas:      dateIdeaRepository,
		}, photos, calendar, cfg.FeedPageSize),
		PlannerService: service.NewPlannerService(service.PlannerRepositories{
			Events:     eventRepository,
			Tasks:      taskRepository,
			Milestones: milestoneRepository,
			Memories:   memoryRepository,
			Ideas:      dateIdeaRepository,
		}, photos, publisher, calendar),
		JournalService: service.NewJournalService(dailyLogRepository, moodRepository, publisher, calendar),
		NudgeService:   service.NewNudgeService(nudgeRepository, roomService, notificationService, publisher, calendar),

		Jobs: jobs.NewRunner(dailyQuestionService, reminderService, anniversaryService),
	}

	return a, nil
}

// AllowedOrigins lists the origins the browser app is served from.
func (a *App) AllowedOrigins() []string {
	return []string{strings.TrimSuffix(a.Cfg.AppURL, "/")}
}

// Listen feeds Postgres notifications into the hub until ctx ends. It is a
// no-op on SQLite, where publishing already goes straight to the hub.
func (a *App) Listen(ctx context.Context) error {
	if !a.Cfg.IsPostgres() {
		return nil
	}
	return realtime.NewListener(a.Cfg.DBConnection, a.Cfg.RealtimeChannel, a.Hub).Run(ctx)
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
