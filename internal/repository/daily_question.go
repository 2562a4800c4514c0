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

var ErrDailyQuestionNotFound = errors.New("daily question not found")

const dailyQuestionView = `
	SELECT daily_questions.*, questions.text, questions.category
	FROM daily_questions
	JOIN questions ON questions.id = daily_questions.question_id
`

type DailyQuestionRepository interface {
	// Insert writes dq unless (room_id, date_key) is already taken and
	// reports whether this call created the row.
	Insert(ctx context.Context, dq *model.DailyQuestion) (bool, error)
	ByRoomAndDate(ctx context.Context, roomID, dateKey string) (*model.DailyQuestionView, error)
	ByID(ctx context.Context, id string) (*model.DailyQuestionView, error)
	RecentQuestionIDs(ctx context.Context, roomID string, limit int) ([]string, error)
	Page(ctx context.Context, roomID, before string, limit int) ([]*model.DailyQuestionView, error)
	History(ctx context.Context, roomID string) ([]*model.DayAnswers, error)
}

type dailyQuestionRepository struct {
	db *sqlx.DB
}

func NewDailyQuestionRepository(db *sqlx.DB) DailyQuestionRepository {
	return &dailyQuestionRepository{db: db}
}

func (r *dailyQuestionRepository) Insert(ctx context.Context, dq *model.DailyQuestion) (bool, error) {
	if dq.ID == "" {
		dq.ID = uuid.New().String()
	}
	if dq.CreatedAt.IsZero() {
		dq.CreatedAt = time.Now().UTC()
	}

	// The unique (room_id, date_key) constraint decides races between
	// concurrent assigners; the loser writes nothing.
	query := `
		INSERT INTO daily_questions (id, room_id, date_key, question_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id, date_key) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, dq.ID, dq.RoomID, dq.DateKey, dq.QuestionID, dq.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *dailyQuestionRepository) ByRoomAndDate(ctx context.Context, roomID, dateKey string) (*model.DailyQuestionView, error) {
	dq := &model.DailyQuestionView{}
	query := dailyQuestionView + ` WHERE daily_questions.room_id = $1 AND daily_questions.date_key = $2`
	err := r.db.GetContext(ctx, dq, query, roomID, dateKey)
	if err == sql.ErrNoRows {
		return nil, ErrDailyQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return dq, nil
}

func (r *dailyQuestionRepository) ByID(ctx context.Context, id string) (*model.DailyQuestionView, error) {
	dq := &model.DailyQuestionView{}
	err := r.db.GetContext(ctx, dq, dailyQuestionView+` WHERE daily_questions.id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrDailyQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return dq, nil
}

// RecentQuestionIDs returns the question ids of the room's latest assignments,
// newest first.
func (r *dailyQuestionRepository) RecentQuestionIDs(ctx context.Context, roomID string, limit int) ([]string, error) {
	var ids []string
	query := `
		SELECT question_id FROM daily_questions
		WHERE room_id = $1
		ORDER BY date_key DESC
		LIMIT $2
	`
	err := r.db.SelectContext(ctx, &ids, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Page returns up to limit daily questions older than before (all when before
// is empty), newest first.
func (r *dailyQuestionRepository) Page(ctx context.Context, roomID, before string, limit int) ([]*model.DailyQuestionView, error) {
	var page []*model.DailyQuestionView
	var err error
	if before == "" {
		query := dailyQuestionView + `
			WHERE daily_questions.room_id = $1
			ORDER BY daily_questions.date_key DESC
			LIMIT $2
		`
		err = r.db.SelectContext(ctx, &page, query, roomID, limit)
	} else {
		query := dailyQuestionView + `
			WHERE daily_questions.room_id = $1 AND daily_questions.date_key < $2
			ORDER BY daily_questions.date_key DESC
			LIMIT $3
		`
		err = r.db.SelectContext(ctx, &page, query, roomID, before, limit)
	}
	if err != nil {
		return nil, err
	}
	return page, nil
}

// History returns every daily question of the room with its number of
// distinct answerers, oldest first.
func (r *dailyQuestionRepository) History(ctx context.Context, roomID string) ([]*model.DayAnswers, error) {
	var days []*model.DayAnswers
	query := `
		SELECT daily_questions.date_key AS date_key, COUNT(DISTINCT answers.user_id) AS answerers
		FROM daily_questions
		LEFT JOIN answers ON answers.daily_question_id = daily_questions.id
		WHERE daily_questions.room_id = $1
		GROUP BY daily_questions.date_key
		ORDER BY daily_questions.date_key ASC
	`
	err := r.db.SelectContext(ctx, &days, query, roomID)
	if err != nil {
		return nil, err
	}
	return days, nil
}
