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

var ErrTaskNotFound = errors.New("task not found")

type TaskRepository interface {
	Create(ctx context.Context, task *model.SharedTask) error
	ByID(ctx context.Context, id string) (*model.SharedTask, error)
	ByRoom(ctx context.Context, roomID string, includeCompleted bool) ([]*model.SharedTask, error)
	InRange(ctx context.Context, roomID, fromKey, toKey string, from, to time.Time) ([]*model.SharedTask, error)
	Complete(ctx context.Context, roomID, id string, now time.Time) error
	Delete(ctx context.Context, roomID, id string) error
	DueReminders(ctx context.Context, now time.Time, limit int) ([]*model.SharedTask, error)
	MarkReminderSent(ctx context.Context, id string, now time.Time) (bool, error)
}

type taskRepository struct {
	db *sqlx.DB
}

func NewTaskRepository(db *sqlx.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.SharedTask) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	task.ReminderAt = utcPtr(task.ReminderAt)

	query := `
		INSERT INTO shared_tasks (id, room_id, created_by, title, notes, due_date, reminder_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.RoomID,
		task.CreatedBy,
		task.Title,
		task.Notes,
		task.DueDate,
		task.ReminderAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *taskRepository) ByID(ctx context.Context, id string) (*model.SharedTask, error) {
	task := &model.SharedTask{}
	err := r.db.GetContext(ctx, task, `SELECT * FROM shared_tasks WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) ByRoom(ctx context.Context, roomID string, includeCompleted bool) ([]*model.SharedTask, error) {
	var tasks []*model.SharedTask
	query := `SELECT * FROM shared_tasks WHERE room_id = $1 AND completed_at IS NULL ORDER BY created_at DESC`
	if includeCompleted {
		query = `SELECT * FROM shared_tasks WHERE room_id = $1 ORDER BY created_at DESC`
	}
	err := r.db.SelectContext(ctx, &tasks, query, roomID)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// InRange returns tasks due between fromKey and toKey inclusive, plus undated
// tasks created in [from, to).
func (r *taskRepository) InRange(ctx context.Context, roomID, fromKey, toKey string, from, to time.Time) ([]*model.SharedTask, error) {
	var tasks []*model.SharedTask
	query := `
		SELECT * FROM shared_tasks
		WHERE room_id = $1
		AND (
			(due_date IS NOT NULL AND due_date >= $2 AND due_date <= $3)
			OR (due_date IS NULL AND created_at >= $4 AND created_at < $5)
		)
		ORDER BY created_at DESC
	`
	err := r.db.SelectContext(ctx, &tasks, query, roomID, fromKey, toKey, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Complete(ctx context.Context, roomID, id string, now time.Time) error {
	query := `
		UPDATE shared_tasks
		SET completed_at = $1, updated_at = $2
		WHERE id = $3 AND room_id = $4 AND completed_at IS NULL
	`
	ok, err := casUpdate(ctx, r.db, query, now.UTC(), now.UTC(), id, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, roomID, id string) error {
	ok, err := casUpdate(ctx, r.db, `DELETE FROM shared_tasks WHERE id = $1 AND room_id = $2`, id, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DueReminders(ctx context.Context, now time.Time, limit int) ([]*model.SharedTask, error) {
	var tasks []*model.SharedTask
	query := `
		SELECT * FROM shared_tasks
		WHERE reminder_at IS NOT NULL
		AND reminder_at <= $1
		AND reminder_sent_at IS NULL
		AND completed_at IS NULL
		ORDER BY reminder_at ASC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &tasks, query, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkReminderSent sets the reminder guard only if it is still unset.
func (r *taskRepository) MarkReminderSent(ctx context.Context, id string, now time.Time) (bool, error) {
	query := `
		UPDATE shared_tasks
		SET reminder_sent_at = $1, updated_at = $2
		WHERE id = $3
		AND reminder_sent_at IS NULL
	`
	return casUpdate(ctx, r.db, query, now.UTC(), now.UTC(), id)
}
