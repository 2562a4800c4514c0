// Package testutil holds helpers shared by package tests: a migrated SQLite
// database, seed data and HTTP request helpers.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/db"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/service/push"
)

// JWTSecret signs tokens minted by AuthHeader.
const JWTSecret = "test-jwt-secret"

// SetupTestDB opens a fresh SQLite database under t.TempDir with all
// migrations applied.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_time_format=sqlite"
	conn, err := db.Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	err = db.RunMigrations(conn.DB, "sqlite")
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// CreateTestRoom inserts a room with the given members and returns its id.
func CreateTestRoom(t *testing.T, conn *sqlx.DB, members ...string) string {
	t.Helper()

	roomID := uuid.New().String()
	now := time.Now().UTC()
	_, err := conn.Exec(`INSERT INTO rooms (id, invite_code, created_at) VALUES ($1, $2, $3)`,
		roomID, roomID[:8], now)
	if err != nil {
		t.Fatalf("Failed to create test room: %v", err)
	}

	for _, userID := range members {
		_, err := conn.Exec(`INSERT INTO room_members (room_id, user_id, joined_at) VALUES ($1, $2, $3)`,
			roomID, userID, now)
		if err != nil {
			t.Fatalf("Failed to add test member: %v", err)
		}
	}

	return roomID
}

// SetAnniversary stores an anniversary date (YYYY-MM-DD) on a room.
func SetAnniversary(t *testing.T, conn *sqlx.DB, roomID, date string) {
	t.Helper()
	_, err := conn.Exec(`UPDATE rooms SET anniversary_date = $1 WHERE id = $2`, date, roomID)
	if err != nil {
		t.Fatalf("Failed to set anniversary: %v", err)
	}
}

// SeedQuestions inserts n questions and returns their ids in insertion order.
func SeedQuestions(t *testing.T, conn *sqlx.DB, n int) []string {
	t.Helper()

	ids := make([]string, 0, n)
	base := time.Now().UTC()
	for i := 0; i < n; i++ {
		id := uuid.New().String()
		_, err := conn.Exec(`INSERT INTO questions (id, text, category, created_at) VALUES ($1, $2, $3, $4)`,
			id, fmt.Sprintf("Test question %03d?", i), "test", base.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			t.Fatalf("Failed to seed question: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// AssignQuestion writes a daily question row directly and returns its id.
func AssignQuestion(t *testing.T, conn *sqlx.DB, roomID, dateKey, questionID string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := conn.Exec(`
		INSERT INTO daily_questions (id, room_id, date_key, question_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, roomID, dateKey, questionID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to assign question: %v", err)
	}
	return id
}

// Answer writes an answer row directly.
func Answer(t *testing.T, conn *sqlx.DB, dailyQuestionID, userID string) {
	t.Helper()

	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO answers (id, daily_question_id, user_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), dailyQuestionID, userID, "answer from "+userID, now, now)
	if err != nil {
		t.Fatalf("Failed to answer: %v", err)
	}
}

// Subscribe registers a push endpoint for a user and returns the endpoint.
func Subscribe(t *testing.T, conn *sqlx.DB, userID, endpoint string) string {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, uuid.New().String(), userID, endpoint, "p256dh", "auth", "test", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	return endpoint
}

// Sent is one delivery recorded by FakeSender.
type Sent struct {
	Endpoint string
	Message  model.PushMessage
}

// FakeSender records deliveries. Endpoints listed in Errors fail with the
// mapped error instead.
type FakeSender struct {
	mu     sync.Mutex
	Sent   []Sent
	Errors map[string]error
}

func NewFakeSender() *FakeSender {
	return &FakeSender{Errors: make(map[string]error)}
}

func (f *FakeSender) Send(ctx context.Context, sub *model.PushSubscription, msg model.PushMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.Errors[sub.Endpoint]; ok {
		return err
	}
	f.Sent = append(f.Sent, Sent{Endpoint: sub.Endpoint, Message: msg})
	return nil
}

// Count returns the number of successful deliveries so far.
func (f *FakeSender) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

var _ push.Sender = (*FakeSender)(nil)

// AuthHeader returns request headers carrying a bearer token for userID.
func AuthHeader(t *testing.T, userID string) map[string]string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + signed}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
