package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var (
	ErrDateIdeaNotFound = errors.New("date idea not found")
	ErrDatePlanNotFound = errors.New("date plan not found")
)

type DateIdeaRepository interface {
	Create(ctx context.Context, idea *model.DateIdea) error
	ByID(ctx context.Context, id string) (*model.DateIdea, error)
	ByRoom(ctx context.Context, roomID string) ([]*model.DateIdea, error)
	PlanDate(ctx context.Context, event *model.SharedEvent, plan *model.DateCompletion) error
	CompletePlan(ctx context.Context, roomID, planID string, rating *int, now time.Time) error
	PlansInRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.DatePlan, error)
}

type dateIdeaRepository struct {
	db *sqlx.DB
}

func NewDateIdeaRepository(db *sqlx.DB) DateIdeaRepository {
	return &dateIdeaRepository{db: db}
}

func (r *dateIdeaRepository) Create(ctx context.Context, idea *model.DateIdea) error {
	if idea.ID == "" {
		idea.ID = uuid.New().String()
	}
	idea.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO date_ideas (id, room_id, created_by, title, description, category, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		idea.ID,
		idea.RoomID,
		idea.CreatedBy,
		idea.Title,
		idea.Description,
		idea.Category,
		idea.CreatedAt,
	)
	return err
}

func (r *dateIdeaRepository) ByID(ctx context.Context, id string) (*model.DateIdea, error) {
	idea := &model.DateIdea{}
	err := r.db.GetContext(ctx, idea, `SELECT * FROM date_ideas WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrDateIdeaNotFound
	}
	if err != nil {
		return nil, err
	}
	return idea, nil
}

func (r *dateIdeaRepository) ByRoom(ctx context.Context, roomID string) ([]*model.DateIdea, error) {
	var ideas []*model.DateIdea
	query := `SELECT * FROM date_ideas WHERE room_id = $1 ORDER BY created_at DESC`
	err := r.db.SelectContext(ctx, &ideas, query, roomID)
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

// PlanDate writes the calendar event and the completion record together.
// Either both rows exist afterwards or neither does.
func (r *dateIdeaRepository) PlanDate(ctx context.Context, event *model.SharedEvent, plan *model.DateCompletion) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = insertEvent(ctx, tx, event)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	plan.EventID = &event.ID
	plan.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO date_completions (id, room_id, date_idea_id, event_id, planned_for, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.ExecContext(ctx, query,
		plan.ID,
		plan.RoomID,
		plan.DateIdeaID,
		plan.EventID,
		plan.PlannedFor,
		plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create date plan: %w", err)
	}

	return tx.Commit()
}

func (r *dateIdeaRepository) CompletePlan(ctx context.Context, roomID, planID string, rating *int, now time.Time) error {
	query := `
		UPDATE date_completions
		SET completed_at = $1, rating = $2
		WHERE id = $3 AND room_id = $4 AND completed_at IS NULL
	`
	ok, err := casUpdate(ctx, r.db, query, now.UTC(), rating, planID, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDatePlanNotFound
	}
	return nil
}

func (r *dateIdeaRepository) PlansInRange(ctx context.Context, roomID, fromKey, toKey string) ([]*model.DatePlan, error) {
	var plans []*model.DatePlan
	query := `
		SELECT date_completions.*, date_ideas.title
		FROM date_completions
		JOIN date_ideas ON date_ideas.id = date_completions.date_idea_id
		WHERE date_completions.room_id = $1
		AND date_completions.planned_for >= $2
		AND date_completions.planned_for <= $3
		ORDER BY date_completions.planned_for DESC
	`
	err := r.db.SelectContext(ctx, &plans, query, roomID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	return plans, nil
}
