package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	ByUser(ctx context.Context, userID string) ([]*model.PushSubscription, error)
	Delete(ctx context.Context, id string) error
	DeleteByEndpoint(ctx context.Context, userID, endpoint string) error
	Touch(ctx context.Context, id string, now time.Time) error
}

type pushSubscriptionRepository struct {
	db *sqlx.DB
}

func NewPushSubscriptionRepository(db *sqlx.DB) PushSubscriptionRepository {
	return &pushSubscriptionRepository{db: db}
}

// Upsert registers an endpoint. A browser re-subscribing with the same endpoint
// replaces the keys and moves it to the current user.
func (r *pushSubscriptionRepository) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh, auth, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (endpoint) DO UPDATE SET
			user_id = excluded.user_id,
			p256dh = excluded.p256dh,
			auth = excluded.auth,
			user_agent = excluded.user_agent
	`
	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Endpoint,
		sub.P256dh,
		sub.Auth,
		sub.UserAgent,
		sub.CreatedAt,
	)
	return err
}

func (r *pushSubscriptionRepository) ByUser(ctx context.Context, userID string) ([]*model.PushSubscription, error) {
	var subs []*model.PushSubscription
	query := `SELECT * FROM push_subscriptions WHERE user_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &subs, query, userID)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *pushSubscriptionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, id)
	return err
}

func (r *pushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID, endpoint string) error {
	query := `DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`
	_, err := r.db.ExecContext(ctx, query, userID, endpoint)
	return err
}

func (r *pushSubscriptionRepository) Touch(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE push_subscriptions SET last_used_at = $1 WHERE id = $2`, now.UTC(), id)
	return err
}
