package routes

import (
	"net/http"

	"github.com/twoofus/server/internal/app"
	"github.com/twoofus/server/internal/handler"
	"github.com/twoofus/server/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB, app.Cfg)
	profile := handler.NewProfileHandler(app.ProfileService)
	room := handler.NewRoomHandler(app.RoomService)
	question := handler.NewQuestionHandler(app.DailyQuestionService, app.AnswerService)
	planner := handler.NewPlannerHandler(app.PlannerService)
	journal := handler.NewJournalHandler(app.JournalService, app.NudgeService, app.Calendar)
	activity := handler.NewActivityHandler(app.ActivityService, app.FeedService)
	notification := handler.NewNotificationHandler(app.NotificationService)
	stream := handler.NewStreamHandler(app.Hub, app.AnswerService)
	webhook := handler.NewWebhookHandler(app.Jobs, app.NotificationService)

	member := middleware.RequireRoomMember(app.RoomService)
	nudgeLimiter := middleware.RateLimitUser(app.NudgeLimit())
	signed := middleware.VerifyWebhook(app.WebhookVerifier)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /api/config", health.Config)

	// ============================================================================
	// ACCOUNT ROUTES (/api/*)
	// ============================================================================

	// Profile
	mux.HandleFunc("GET /api/profile", middleware.RequireAuth(profile.Show))
	mux.HandleFunc("PUT /api/profile", middleware.RequireAuth(profile.Update))

	// Notifications
	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(notification.Inbox))
	mux.HandleFunc("POST /api/notifications/read-all", middleware.RequireAuth(notification.MarkAllRead))
	mux.HandleFunc("POST /api/notifications/{id}/read", middleware.RequireAuth(notification.MarkRead))
	mux.HandleFunc("POST /api/push/subscriptions", middleware.RequireAuth(notification.Subscribe))
	mux.HandleFunc("DELETE /api/push/subscriptions", middleware.RequireAuth(notification.Unsubscribe))

	// Rooms
	mux.HandleFunc("GET /api/rooms", middleware.RequireAuth(room.List))
	mux.HandleFunc("POST /api/rooms", middleware.RequireAuth(room.Create))
	mux.HandleFunc("POST /api/rooms/join", middleware.RequireAuth(room.Join))

	// ============================================================================
	// ROOM ROUTES (/api/rooms/{roomID}/*, members only)
	// ============================================================================

	mux.HandleFunc("GET /api/rooms/{roomID}", member(room.Show))
	mux.HandleFunc("PUT /api/rooms/{roomID}/anniversary", member(room.SetAnniversary))
	mux.HandleFunc("POST /api/rooms/{roomID}/invite", member(room.Invite))
	mux.HandleFunc("GET /api/rooms/{roomID}/stream", member(stream.Stream))

	// Daily questions
	mux.HandleFunc("GET /api/rooms/{roomID}/today", member(question.Today))
	mux.HandleFunc("GET /api/rooms/{roomID}/questions/{questionID}", member(question.Thread))
	mux.HandleFunc("POST /api/rooms/{roomID}/questions/{questionID}/answers", member(question.Answer))
	mux.HandleFunc("PUT /api/rooms/{roomID}/questions/{questionID}/reaction", member(question.React))
	mux.HandleFunc("GET /api/rooms/{roomID}/questions/{questionID}/messages", member(question.Messages))
	mux.HandleFunc("POST /api/rooms/{roomID}/questions/{questionID}/messages", member(question.PostMessage))

	// Activity
	mux.HandleFunc("GET /api/rooms/{roomID}/activity", member(activity.Activity))
	mux.HandleFunc("GET /api/rooms/{roomID}/feed", member(activity.Feed))

	// Planner
	mux.HandleFunc("GET /api/rooms/{roomID}/events", member(planner.Events))
	mux.HandleFunc("POST /api/rooms/{roomID}/events", member(planner.CreateEvent))
	mux.HandleFunc("DELETE /api/rooms/{roomID}/events/{id}", member(planner.DeleteEvent))
	mux.HandleFunc("GET /api/rooms/{roomID}/tasks", member(planner.Tasks))
	mux.HandleFunc("POST /api/rooms/{roomID}/tasks", member(planner.CreateTask))
	mux.HandleFunc("POST /api/rooms/{roomID}/tasks/{id}/complete", member(planner.CompleteTask))
	mux.HandleFunc("DELETE /api/rooms/{roomID}/tasks/{id}", member(planner.DeleteTask))
	mux.HandleFunc("GET /api/rooms/{roomID}/milestones", member(planner.Milestones))
	mux.HandleFunc("POST /api/rooms/{roomID}/milestones", member(planner.CreateMilestone))
	mux.HandleFunc("DELETE /api/rooms/{roomID}/milestones/{id}", member(planner.DeleteMilestone))
	mux.HandleFunc("GET /api/rooms/{roomID}/memories", member(planner.Memories))
	mux.HandleFunc("POST /api/rooms/{roomID}/memories", member(planner.CreateMemory))
	mux.HandleFunc("DELETE /api/rooms/{roomID}/memories/{id}", member(planner.DeleteMemory))
	mux.HandleFunc("GET /api/rooms/{roomID}/date-ideas", member(planner.DateIdeas))
	mux.HandleFunc("POST /api/rooms/{roomID}/date-ideas", member(planner.CreateDateIdea))
	mux.HandleFunc("POST /api/rooms/{roomID}/date-ideas/{id}/plan", member(planner.PlanDate))
	mux.HandleFunc("POST /api/rooms/{roomID}/date-plans/{id}/complete", member(planner.CompleteDatePlan))

	// Journal, mood and nudges
	mux.HandleFunc("GET /api/rooms/{roomID}/journal", member(journal.Logs))
	mux.HandleFunc("PUT /api/rooms/{roomID}/journal", member(journal.WriteLog))
	mux.HandleFunc("GET /api/rooms/{roomID}/moods", member(journal.Moods))
	mux.HandleFunc("PUT /api/rooms/{roomID}/mood", member(journal.CheckIn))
	mux.HandleFunc("GET /api/rooms/{roomID}/nudges", member(journal.Nudges))
	mux.HandleFunc("POST /api/rooms/{roomID}/nudges", member(nudgeLimiter(journal.Nudge)))

	// ============================================================================
	// WEBHOOKS (signed)
	// ============================================================================

	mux.HandleFunc("POST /webhooks/jobs/{job}", signed(webhook.RunJob))
	mux.HandleFunc("POST /webhooks/notify", signed(webhook.Notify))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		middleware.ErrorResponse(w, http.StatusNotFound, "not found")
	})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.CORS(app.AllowedOrigins()),
		middleware.BearerAuth(app.AuthService),
	)
}
