package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	Create(ctx context.Context, event *model.SharedEvent) error
	ByID(ctx context.Context, id string) (*model.SharedEvent, error)
	InRange(ctx context.Context, roomID string, from, to time.Time) ([]*model.SharedEvent, error)
	Delete(ctx context.Context, roomID, id string) error
	DueReminders(ctx context.Context, now time.Time, limit int) ([]*model.SharedEvent, error)
	MarkReminderSent(ctx context.Context, id string, now time.Time) (bool, error)
}

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func insertEvent(ctx context.Context, exec sqlx.ExecerContext, event *model.SharedEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	event.StartsAt = event.StartsAt.UTC()
	event.EndsAt = utcPtr(event.EndsAt)
	event.ReminderAt = utcPtr(event.ReminderAt)

	query := `
		INSERT INTO shared_events (id, room_id, created_by, title, notes, starts_at, ends_at, reminder_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := exec.ExecContext(ctx, query,
		event.ID,
		event.RoomID,
		event.CreatedBy,
		event.Title,
		event.Notes,
		event.StartsAt,
		event.EndsAt,
		event.ReminderAt,
		event.CreatedAt,
		event.UpdatedAt,
	)
	return err
}

func (r *eventRepository) Create(ctx context.Context, event *model.SharedEvent) error {
	return insertEvent(ctx, r.db, event)
}

func (r *eventRepository) ByID(ctx context.Context, id string) (*model.SharedEvent, error) {
	event := &model.SharedEvent{}
	err := r.db.GetContext(ctx, event, `SELECT * FROM shared_events WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// InRange returns events starting in [from, to).
func (r *eventRepository) InRange(ctx context.Context, roomID string, from, to time.Time) ([]*model.SharedEvent, error) {
	var events []*model.SharedEvent
	query := `
		SELECT * FROM shared_events
		WHERE room_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at ASC
	`
	err := r.db.SelectContext(ctx, &events, query, roomID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Delete(ctx context.Context, roomID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shared_events WHERE id = $1 AND room_id = $2`, id, roomID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *eventRepository) DueReminders(ctx context.Context, now time.Time, limit int) ([]*model.SharedEvent, error) {
	var events []*model.SharedEvent
	query := `
		SELECT * FROM shared_events
		WHERE reminder_at IS NOT NULL
		AND reminder_at <= $1
		AND reminder_sent_at IS NULL
		ORDER BY reminder_at ASC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &events, query, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// MarkReminderSent sets the reminder guard only if it is still unset.
// It returns false when another scan got there first.
func (r *eventRepository) MarkReminderSent(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE shared_events
		SET reminder_sent_at = $1, updated_at = $2
		WHERE id = $3
		AND reminder_sent_at IS NULL
	`
	return casUpdate(ctx, r.db, query, now.UTC(), now.UTC(), id)
}

func casUpdate(ctx context.Context, exec sqlx.ExecerContext, query string, args ...any) (bool, error) {
	result, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
