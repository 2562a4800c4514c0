package model

import "time"

type Question struct {
	ID        string    `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DailyQuestion assigns one question to a room for one business day.
type DailyQuestion struct {
	ID         string    `db:"id" json:"id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	DateKey    string    `db:"date_key" json:"date_key"`
	QuestionID string    `db:"question_id" json:"question_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DailyQuestionView is a daily question joined with its question text.
type DailyQuestionView struct {
	DailyQuestion
	Text     string `db:"text" json:"text"`
	Category string `db:"category" json:"category"`
}

type Answer struct {
	ID              string    `db:"id" json:"id"`
	DailyQuestionID string    `db:"daily_question_id" json:"daily_question_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Body            string    `db:"body" json:"body"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type Reaction struct {
	ID              string    `db:"id" json:"id"`
	DailyQuestionID string    `db:"daily_question_id" json:"daily_question_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Emoji           string    `db:"emoji" json:"emoji"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type Message struct {
	ID              string    `db:"id" json:"id"`
	DailyQuestionID string    `db:"daily_question_id" json:"daily_question_id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Body            string    `db:"body" json:"body"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// DayAnswers is one row of a room's answer history: how many distinct
// members answered the question of a given date-key.
type DayAnswers struct {
	DateKey   string `db:"date_key"`
	Answerers int    `db:"answerers"`
}

// QuestionThread is everything shown for one daily question.
type QuestionThread struct {
	Question  *DailyQuestionView `json:"question"`
	Answers   []*Answer          `json:"answers"`
	Reactions []*Reaction        `json:"reactions"`
	Messages  []*Message         `json:"messages"`
	// PartnerAnswered is set when the partner's answer exists but is hidden
	// because the caller has not answered yet.
	PartnerAnswered bool `json:"partner_answered"`
}
