package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var ErrAlreadyAnswered = errors.New("question already answered")

type AnswerRepository interface {
	Create(ctx context.Context, answer *model.Answer) error
	ByDailyQuestion(ctx context.Context, dailyQuestionID string) ([]*model.Answer, error)
}

type answerRepository struct {
	db *sqlx.DB
}

func NewAnswerRepository(db *sqlx.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Create(ctx context.Context, answer *model.Answer) error {
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	answer.CreatedAt = now
	answer.UpdatedAt = now

	query := `
		INSERT INTO answers (id, daily_question_id, user_id, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (daily_question_id, user_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		answer.ID,
		answer.DailyQuestionID,
		answer.UserID,
		answer.Body,
		answer.CreatedAt,
		answer.UpdatedAt,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyAnswered
	}
	return nil
}

func (r *answerRepository) ByDailyQuestion(ctx context.Context, dailyQuestionID string) ([]*model.Answer, error) {
	var answers []*model.Answer
	query := `SELECT * FROM answers WHERE daily_question_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &answers, query, dailyQuestionID)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

type ReactionRepository interface {
	Upsert(ctx context.Context, reaction *model.Reaction) error
	Delete(ctx context.Context, dailyQuestionID, userID string) error
	ByUser(ctx context.Context, dailyQuestionID, userID string) (*model.Reaction, error)
	ByDailyQuestion(ctx context.Context, dailyQuestionID string) ([]*model.Reaction, error)
}

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Upsert(ctx context.Context, reaction *model.Reaction) error {
	if reaction.ID == "" {
		reaction.ID = uuid.New().String()
	}
	reaction.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO reactions (id, daily_question_id, user_id, emoji, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (daily_question_id, user_id) DO UPDATE SET
			emoji = excluded.emoji,
			created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		reaction.ID,
		reaction.DailyQuestionID,
		reaction.UserID,
		reaction.Emoji,
		reaction.CreatedAt,
	)
	return err
}

func (r *reactionRepository) Delete(ctx context.Context, dailyQuestionID, userID string) error {
	query := `DELETE FROM reactions WHERE daily_question_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, dailyQuestionID, userID)
	return err
}

// ByUser returns nil without error when the user has not reacted.
func (r *reactionRepository) ByUser(ctx context.Context, dailyQuestionID, userID string) (*model.Reaction, error) {
	var reactions []*model.Reaction
	query := `SELECT * FROM reactions WHERE daily_question_id = $1 AND user_id = $2`
	err := r.db.SelectContext(ctx, &reactions, query, dailyQuestionID, userID)
	if err != nil {
		return nil, err
	}
	if len(reactions) == 0 {
		return nil, nil
	}
	return reactions[0], nil
}

func (r *reactionRepository) ByDailyQuestion(ctx context.Context, dailyQuestionID string) ([]*model.Reaction, error) {
	var reactions []*model.Reaction
	query := `SELECT * FROM reactions WHERE daily_question_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &reactions, query, dailyQuestionID)
	if err != nil {
		return nil, err
	}
	return reactions, nil
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ByDailyQuestion(ctx context.Context, dailyQuestionID string) ([]*model.Message, error)
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.Body = strings.TrimSpace(msg.Body)
	msg.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO messages (id, daily_question_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.DailyQuestionID, msg.UserID, msg.Body, msg.CreatedAt)
	return err
}

func (r *messageRepository) ByDailyQuestion(ctx context.Context, dailyQuestionID string) ([]*model.Message, error) {
	var messages []*model.Message
	query := `SELECT * FROM messages WHERE daily_question_id = $1 ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &messages, query, dailyQuestionID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}
