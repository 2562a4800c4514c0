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

var ErrQuestionNotFound = errors.New("question not found")

type QuestionRepository interface {
	// Insert stores q unless a question with the same text exists.
	Insert(ctx context.Context, q *model.Question) (bool, error)
	IDs(ctx context.Context) ([]string, error)
	ByID(ctx context.Context, id string) (*model.Question, error)
	Count(ctx context.Context) (int, error)
}

type questionRepository struct {
	db *sqlx.DB
}

func NewQuestionRepository(db *sqlx.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Insert(ctx context.Context, q *model.Question) (bool, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO questions (id, text, category, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (text) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, q.ID, q.Text, q.Category, q.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *questionRepository) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM questions ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *questionRepository) ByID(ctx context.Context, id string) (*model.Question, error) {
	q := &model.Question{}
	err := r.db.GetContext(ctx, q, `SELECT * FROM questions WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *questionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM questions`)
	return n, err
}
