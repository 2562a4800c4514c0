package service

import (
	"context"
	"fmt"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/validation"
)

const (
	EventJournal = "journal"
	EventMood    = "mood"
)

// JournalService stores the per-user daily log and mood check-in. Both are
// keyed by date-key, so a second write on the same day replaces the first.
type JournalService struct {
	logs      repository.DailyLogRepository
	moods     repository.MoodRepository
	publisher realtime.Publisher
	calendar  *datekey.Calendar
}

func NewJournalService(logs repository.DailyLogRepository, moods repository.MoodRepository, publisher realtime.Publisher, calendar *datekey.Calendar) *JournalService {
	return &JournalService{logs: logs, moods: moods, publisher: publisher, calendar: calendar}
}

func (s *JournalService) WriteLog(ctx context.Context, roomID, userID, body string, now time.Time) (*model.DailyLog, error) {
	body, err := validation.Text("body", body, validation.MaxJournalLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	log := &model.DailyLog{
		RoomID:  roomID,
		UserID:  userID,
		DateKey: s.calendar.Key(now),
		Body:    body,
	}
	err = s.logs.Upsert(ctx, log)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, roomID, EventJournal, map[string]string{"user_id": userID, "date_key": log.DateKey})
	return log, nil
}

func (s *JournalService) Logs(ctx context.Context, roomID, fromKey, toKey string) ([]*model.DailyLog, error) {
	if !datekey.Valid(fromKey) || !datekey.Valid(toKey) {
		return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrInvalidInput)
	}
	return s.logs.InRange(ctx, roomID, fromKey, toKey)
}

func (s *JournalService) CheckIn(ctx context.Context, roomID, userID, mood, note string, now time.Time) (*model.MoodCheckin, error) {
	if !model.ValidMood(mood) {
		return nil, fmt.Errorf("%w: unknown mood %q", ErrInvalidInput, mood)
	}
	note, err := validation.OptionalText("note", note, validation.MaxNoteLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	checkin := &model.MoodCheckin{
		RoomID:  roomID,
		UserID:  userID,
		DateKey: s.calendar.Key(now),
		Mood:    mood,
		Note:    note,
	}
	err = s.moods.Upsert(ctx, checkin)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, roomID, EventMood, map[string]string{"user_id": userID, "mood": mood})
	return checkin, nil
}

// Moods returns both members' check-ins for today.
func (s *JournalService) Moods(ctx context.Context, roomID string, now time.Time) ([]*model.MoodCheckin, error) {
	return s.moods.ByDate(ctx, roomID, s.calendar.Key(now))
}
