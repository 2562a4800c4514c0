package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	ByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID, id string, now time.Time) error
	MarkAllRead(ctx context.Context, userID string, now time.Time) (int64, error)
}

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO notifications (id, user_id, room_id, kind, title, body, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.RoomID,
		n.Kind,
		n.Title,
		n.Body,
		n.URL,
		n.CreatedAt,
	)
	return err
}

func (r *notificationRepository) ByUser(ctx context.Context, userID string, limit int) ([]*model.Notification, error) {
	var notifications []*model.Notification
	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	err := r.db.SelectContext(ctx, &notifications, query, userID, limit)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL`
	err := r.db.GetContext(ctx, &n, query, userID)
	return n, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string, now time.Time) error {
	query := `UPDATE notifications SET read_at = $1 WHERE id = $2 AND user_id = $3 AND read_at IS NULL`
	ok, err := casUpdate(ctx, r.db, query, now.UTC(), id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, now time.Time) (int64, error) {
	query := `UPDATE notifications SET read_at = $1 WHERE user_id = $2 AND read_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, now.UTC(), userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
