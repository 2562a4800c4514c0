package routes

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/twoofus/server/internal/app"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/testutil"
)

const testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type testServer struct {
	app     *app.App
	handler http.Handler
	sender  *testutil.FakeSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		AppName:              "The Two of Us",
		AppEnv:               "development",
		AppURL:               "https://app.test",
		DBDriver:             "sqlite",
		AuthJWTSecret:        testutil.JWTSecret,
		WebhookSecret:        testWebhookSecret,
		BusinessTimezone:     "UTC",
		RecentQuestionWindow: 60,
		ReminderBatchSize:    100,
		ActivityWindowDays:   30,
		FeedPageSize:         10,
		DefaultLocale:        "en",
		RealtimeChannel:      "twoofus_realtime",
	}

	sender := testutil.NewFakeSender()
	a, err := app.NewWithDB(cfg, testutil.SetupTestDB(t), app.Options{Sender: sender})
	if err != nil {
		t.Fatalf("Failed to build app: %v", err)
	}

	return &testServer{app: a, handler: SetupRoutes(a), sender: sender}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := s.do(testutil.MakeRequest("GET", "/healthz", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(testutil.MakeRequest("GET", "/api/config", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var public map[string]string
	testutil.AssertJSON(t, w, &public)
	if public["app_url"] != "https://app.test" {
		t.Errorf("app_url = %q", public["app_url"])
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(testutil.MakeRequest("GET", "/api/rooms", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = s.do(testutil.MakeRequest("GET", "/api/nowhere", nil, nil))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestRoomFlow(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.AuthHeader(t, "alice")
	bob := testutil.AuthHeader(t, "bob")
	carol := testutil.AuthHeader(t, "carol")

	w := s.do(testutil.MakeRequest("POST", "/api/rooms", nil, alice))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var room model.Room
	testutil.AssertJSON(t, w, &room)

	w = s.do(testutil.MakeRequest("POST", "/api/rooms/join", map[string]string{"code": strings.ToLower(room.InviteCode)}, bob))
	testutil.AssertStatus(t, w, http.StatusOK)

	// A third member is refused.
	w = s.do(testutil.MakeRequest("POST", "/api/rooms/join", map[string]string{"code": room.InviteCode}, carol))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Outsiders cannot see that the room exists.
	w = s.do(testutil.MakeRequest("GET", "/api/rooms/"+room.ID, nil, carol))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = s.do(testutil.MakeRequest("GET", "/api/rooms/"+room.ID, nil, bob))
	testutil.AssertStatus(t, w, http.StatusOK)
	var shown struct {
		ID      string              `json:"id"`
		Members []*model.RoomMember `json:"members"`
	}
	testutil.AssertJSON(t, w, &shown)
	if shown.ID != room.ID || len(shown.Members) != 2 {
		t.Errorf("show = %+v", shown)
	}

	w = s.do(testutil.MakeRequest("PUT", "/api/rooms/"+room.ID+"/anniversary", map[string]string{"date": "2020-02-30"}, alice))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	w = s.do(testutil.MakeRequest("PUT", "/api/rooms/"+room.ID+"/anniversary", map[string]string{"date": "2020-02-29"}, alice))
	testutil.AssertStatus(t, w, http.StatusNoContent)
}

func TestTodayAndAnswer(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedQuestions(t, s.app.DB, 5)
	roomID := testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	alice := testutil.AuthHeader(t, "alice")
	bob := testutil.AuthHeader(t, "bob")
	base := "/api/rooms/" + roomID

	w := s.do(testutil.MakeRequest("GET", base+"/today", nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var thread model.QuestionThread
	testutil.AssertJSON(t, w, &thread)
	if thread.Question == nil || thread.Question.Text == "" {
		t.Fatalf("today has no question: %+v", thread)
	}
	dqID := thread.Question.ID

	w = s.do(testutil.MakeRequest("POST", base+"/questions/"+dqID+"/answers", map[string]string{"body": "Pancakes"}, bob))
	testutil.AssertStatus(t, w, http.StatusCreated)
	w = s.do(testutil.MakeRequest("POST", base+"/questions/"+dqID+"/answers", map[string]string{"body": "Waffles"}, bob))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Alice sees that bob answered, but not what.
	w = s.do(testutil.MakeRequest("GET", base+"/questions/"+dqID, nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	thread = model.QuestionThread{}
	testutil.AssertJSON(t, w, &thread)
	if !thread.PartnerAnswered || len(thread.Answers) != 0 {
		t.Errorf("alice thread before answering = %+v", thread)
	}

	w = s.do(testutil.MakeRequest("GET", base+"/questions/not-a-question", nil, alice))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestNudgeRateLimit(t *testing.T) {
	s := newTestServer(t)
	roomID := testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	alice := testutil.AuthHeader(t, "alice")
	path := "/api/rooms/" + roomID + "/nudges"

	limit, _ := s.app.NudgeLimit()
	for i := 0; i < limit; i++ {
		w := s.do(testutil.MakeRequest("POST", path, map[string]string{"emoji": "💛"}, alice))
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	w := s.do(testutil.MakeRequest("POST", path, map[string]string{"emoji": "💛"}, alice))
	testutil.AssertStatus(t, w, http.StatusTooManyRequests)
	if w.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	w = s.do(testutil.MakeRequest("GET", path, nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var nudges []model.Nudge
	testutil.AssertJSON(t, w, &nudges)
	if len(nudges) != limit {
		t.Errorf("stored %d nudges, want %d", len(nudges), limit)
	}
}

func TestPlannerRoutes(t *testing.T) {
	s := newTestServer(t)
	roomID := testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	alice := testutil.AuthHeader(t, "alice")
	base := "/api/rooms/" + roomID

	startsAt := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	w := s.do(testutil.MakeRequest("POST", base+"/events", map[string]any{
		"title":     "Dinner",
		"starts_at": startsAt,
	}, alice))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var event model.SharedEvent
	testutil.AssertJSON(t, w, &event)

	w = s.do(testutil.MakeRequest("GET", base+"/events", nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var events []model.SharedEvent
	testutil.AssertJSON(t, w, &events)
	if len(events) != 1 || events[0].ID != event.ID {
		t.Errorf("events = %+v", events)
	}

	w = s.do(testutil.MakeRequest("GET", base+"/events?from=yesterday", nil, alice))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	w = s.do(testutil.MakeRequest("DELETE", base+"/events/"+event.ID, nil, alice))
	testutil.AssertStatus(t, w, http.StatusNoContent)
	w = s.do(testutil.MakeRequest("DELETE", base+"/events/"+event.ID, nil, alice))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = s.do(testutil.MakeRequest("POST", base+"/tasks", map[string]string{"title": "Book flights"}, alice))
	testutil.AssertStatus(t, w, http.StatusCreated)
	var task model.SharedTask
	testutil.AssertJSON(t, w, &task)

	w = s.do(testutil.MakeRequest("POST", base+"/tasks/"+task.ID+"/complete", nil, alice))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = s.do(testutil.MakeRequest("GET", base+"/tasks", nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var open []model.SharedTask
	testutil.AssertJSON(t, w, &open)
	if len(open) != 0 {
		t.Errorf("open tasks = %d, want 0", len(open))
	}

	w = s.do(testutil.MakeRequest("POST", base+"/tasks", map[string]string{"title": "x", "colour": "red"}, alice))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestJournalRoutes(t *testing.T) {
	s := newTestServer(t)
	roomID := testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	alice := testutil.AuthHeader(t, "alice")
	base := "/api/rooms/" + roomID

	w := s.do(testutil.MakeRequest("PUT", base+"/mood", map[string]string{"mood": "sleepy"}, alice))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	w = s.do(testutil.MakeRequest("PUT", base+"/mood", map[string]string{"mood": model.MoodGood}, alice))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(testutil.MakeRequest("PUT", base+"/journal", map[string]string{"body": "A slow Sunday."}, alice))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = s.do(testutil.MakeRequest("GET", base+"/journal", nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var logs []model.DailyLog
	testutil.AssertJSON(t, w, &logs)
	if len(logs) != 1 || logs[0].Body != "A slow Sunday." {
		t.Errorf("logs = %+v", logs)
	}

	w = s.do(testutil.MakeRequest("GET", base+"/journal?from=2024-05-02&to=2024-05-01", nil, alice))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestNotificationRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := testutil.AuthHeader(t, "alice")

	sub := map[string]any{
		"endpoint": "https://push.example/alice",
		"keys":     map[string]string{"p256dh": "key", "auth": "secret"},
	}
	w := s.do(testutil.MakeRequest("POST", "/api/push/subscriptions", sub, alice))
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = s.do(testutil.MakeRequest("POST", "/api/push/subscriptions", map[string]any{"endpoint": "http://insecure"}, alice))
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	_, err := s.app.NotificationService.Notify(context.Background(), "alice", nil, model.NotifKindNudge, model.PushMessage{Title: "Hi", Body: "there"})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if s.sender.Count() != 1 {
		t.Errorf("sent %d pushes, want 1", s.sender.Count())
	}

	w = s.do(testutil.MakeRequest("GET", "/api/notifications", nil, alice))
	testutil.AssertStatus(t, w, http.StatusOK)
	var inbox struct {
		Items  []model.Notification `json:"items"`
		Unread int                  `json:"unread"`
	}
	testutil.AssertJSON(t, w, &inbox)
	if len(inbox.Items) != 1 || inbox.Unread != 1 {
		t.Fatalf("inbox = %+v", inbox)
	}

	w = s.do(testutil.MakeRequest("POST", "/api/notifications/"+inbox.Items[0].ID+"/read", nil, alice))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	// Another user cannot mark it.
	w = s.do(testutil.MakeRequest("POST", "/api/notifications/"+inbox.Items[0].ID+"/read", nil, testutil.AuthHeader(t, "mallory")))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	w = s.do(testutil.MakeRequest("DELETE", "/api/push/subscriptions", map[string]string{"endpoint": "https://push.example/alice"}, alice))
	testutil.AssertStatus(t, w, http.StatusNoContent)
}

func signedRequest(t *testing.T, s *testServer, path string, payload []byte) *http.Request {
	t.Helper()

	now := time.Now()
	signature, err := s.app.WebhookVerifier.Sign("msg_1", now, payload)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("webhook-id", "msg_1")
	req.Header.Set("webhook-timestamp", strconv.FormatInt(now.Unix(), 10))
	req.Header.Set("webhook-signature", signature)
	return req
}

func TestWebhookJobs(t *testing.T) {
	s := newTestServer(t)
	testutil.SeedQuestions(t, s.app.DB, 3)
	testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	testutil.CreateTestRoom(t, s.app.DB, "carol", "dave")

	w := s.do(signedRequest(t, s, "/webhooks/jobs/assign-daily-question", []byte(`{}`)))
	testutil.AssertStatus(t, w, http.StatusOK)
	var summary model.AssignSummary
	testutil.AssertJSON(t, w, &summary)
	if summary.Rooms != 2 || summary.Added != 2 {
		t.Errorf("summary = %+v", summary)
	}

	w = s.do(signedRequest(t, s, "/webhooks/jobs/make-coffee", []byte(`{}`)))
	testutil.AssertStatus(t, w, http.StatusNotFound)

	req := testutil.MakeRequest("POST", "/webhooks/jobs/assign-daily-question", map[string]string{}, nil)
	w = s.do(req)
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestWebhookNotify(t *testing.T) {
	s := newTestServer(t)
	testutil.Subscribe(t, s.app.DB, "alice", "https://push.example/alice")

	w := s.do(signedRequest(t, s, "/webhooks/notify", []byte(`{"user_id":"alice","title":"Hello","body":"From cron"}`)))
	testutil.AssertStatus(t, w, http.StatusOK)
	var result model.DispatchResult
	testutil.AssertJSON(t, w, &result)
	if result.Sent != 1 {
		t.Errorf("result = %+v", result)
	}

	w = s.do(signedRequest(t, s, "/webhooks/notify", []byte(`{"title":"Hello"}`)))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestStream(t *testing.T) {
	s := newTestServer(t)
	roomID := testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	alice := testutil.AuthHeader(t, "alice")
	token := strings.TrimPrefix(alice["Authorization"], "Bearer ")

	srv := httptest.NewServer(s.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	streamURL := srv.URL + "/api/rooms/" + roomID + "/stream?access_token=" + url.QueryEscape(token)
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stream status = %d", resp.StatusCode)
	}

	lines := bufio.NewScanner(resp.Body)
	if !lines.Scan() || !strings.HasPrefix(lines.Text(), ": subscribed") {
		t.Fatalf("first line = %q", lines.Text())
	}

	w := s.do(testutil.MakeRequest("PUT", "/api/rooms/"+roomID+"/mood", map[string]string{"mood": model.MoodGreat}, testutil.AuthHeader(t, "bob")))
	testutil.AssertStatus(t, w, http.StatusOK)

	for lines.Scan() {
		if lines.Text() == "event: mood" {
			if !lines.Scan() || !strings.Contains(lines.Text(), `"resource":"`+roomID+`"`) {
				t.Errorf("data line = %q", lines.Text())
			}
			return
		}
	}
	t.Fatalf("stream ended without a mood event: %v", lines.Err())
}

func TestStreamRejectsForeignQuestion(t *testing.T) {
	s := newTestServer(t)
	questions := testutil.SeedQuestions(t, s.app.DB, 1)
	ours := testutil.CreateTestRoom(t, s.app.DB, "alice", "bob")
	theirs := testutil.CreateTestRoom(t, s.app.DB, "carol", "dave")
	foreign := testutil.AssignQuestion(t, s.app.DB, theirs, "2024-05-01", questions[0])

	w := s.do(testutil.MakeRequest("GET", "/api/rooms/"+ours+"/stream?resource="+foreign, nil, testutil.AuthHeader(t, "alice")))
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
