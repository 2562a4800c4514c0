package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var ErrStatsNotFound = errors.New("room stats not found")

type StatsRepository interface {
	Upsert(ctx context.Context, stats *model.RoomStats) error
	ByRoom(ctx context.Context, roomID string) (*model.RoomStats, error)
}

type statsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Upsert(ctx context.Context, stats *model.RoomStats) error {
	query := `
		INSERT INTO room_stats (room_id, current_streak, best_streak, total_answered, computed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			best_streak = excluded.best_streak,
			total_answered = excluded.total_answered,
			computed_at = excluded.computed_at
	`
	_, err := r.db.ExecContext(ctx, query,
		stats.RoomID,
		stats.CurrentStreak,
		stats.BestStreak,
		stats.TotalAnswered,
		stats.ComputedAt.UTC(),
	)
	return err
}

func (r *statsRepository) ByRoom(ctx context.Context, roomID string) (*model.RoomStats, error) {
	stats := &model.RoomStats{}
	err := r.db.GetContext(ctx, stats, `SELECT * FROM room_stats WHERE room_id = $1`, roomID)
	if err == sql.ErrNoRows {
		return nil, ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return stats, nil
}
