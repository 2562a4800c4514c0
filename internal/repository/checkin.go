package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

type MoodRepository interface {
	Upsert(ctx context.Context, checkin *model.MoodCheckin) error
	ByDate(ctx context.Context, roomID, dateKey string) ([]*model.MoodCheckin, error)
}

type moodRepository struct {
	db *sqlx.DB
}

func NewMoodRepository(db *sqlx.DB) MoodRepository {
	return &moodRepository{db: db}
}

func (r *moodRepository) Upsert(ctx context.Context, checkin *model.MoodCheckin) error {
	if checkin.ID == "" {
		checkin.ID = uuid.New().String()
	}
	checkin.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO mood_checkins (id, room_id, user_id, date_key, mood, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (room_id, user_id, date_key) DO UPDATE SET
			mood = excluded.mood,
			note = excluded.note
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		checkin.ID,
		checkin.RoomID,
		checkin.UserID,
		checkin.DateKey,
		checkin.Mood,
		checkin.Note,
		checkin.CreatedAt,
	).Scan(&checkin.ID)
	return err
}

func (r *moodRepository) ByDate(ctx context.Context, roomID, dateKey string) ([]*model.MoodCheckin, error) {
	var checkins []*model.MoodCheckin
	query := `SELECT * FROM mood_checkins WHERE room_id = $1 AND date_key = $2 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &checkins, query, roomID, dateKey)
	if err != nil {
		return nil, err
	}
	return checkins, nil
}

type NudgeRepository interface {
	Create(ctx context.Context, nudge *model.Nudge) error
	InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Nudge, error)
}

type nudgeRepository struct {
	db *sqlx.DB
}

func NewNudgeRepository(db *sqlx.DB) NudgeRepository {
	return &nudgeRepository{db: db}
}

func (r *nudgeRepository) Create(ctx context.Context, nudge *model.Nudge) error {
	if nudge.ID == "" {
		nudge.ID = uuid.New().String()
	}
	nudge.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO nudges (id, room_id, sender_id, recipient_id, emoji, message, date_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		nudge.ID,
		nudge.RoomID,
		nudge.SenderID,
		nudge.RecipientID,
		nudge.Emoji,
		nudge.Message,
		nudge.DateKey,
		nudge.CreatedAt,
	)
	return err
}

func (r *nudgeRepository) InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Nudge, error) {
	var nudges []*model.Nudge
	query := `
		SELECT * FROM nudges
		WHERE room_id = $1 AND date_key >= $2 AND date_key <= $3
		ORDER BY created_at DESC
	`
	err := r.db.SelectContext(ctx, &nudges, query, roomID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return nudges, nil
}

type DailyLogRepository interface {
	Upsert(ctx context.Context, log *model.DailyLog) error
	InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.DailyLog, error)
}

type dailyLogRepository struct {
	db *sqlx.DB
}

func NewDailyLogRepository(db *sqlx.DB) DailyLogRepository {
	return &dailyLogRepository{db: db}
}

func (r *dailyLogRepository) Upsert(ctx context.Context, log *model.DailyLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	query := `
		INSERT INTO daily_logs (id, room_id, user_id, date_key, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (room_id, user_id, date_key) DO UPDATE SET
			body = excluded.body,
			updated_at = excluded.updated_at
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query,
		log.ID,
		log.RoomID,
		log.UserID,
		log.DateKey,
		log.Body,
		log.CreatedAt,
		log.UpdatedAt,
	).Scan(&log.ID)
	return err
}

func (r *dailyLogRepository) InRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.DailyLog, error) {
	var logs []*model.DailyLog
	query := `
		SELECT * FROM daily_logs
		WHERE room_id = $1 AND date_key >= $2 AND date_key <= $3
		ORDER BY date_key DESC, created_at DESC
	`
	err := r.db.SelectContext(ctx, &logs, query, roomID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
