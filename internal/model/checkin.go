package model

import "time"

const (
	MoodGreat = "great"
	MoodGood  = "good"
	MoodOkay  = "okay"
	MoodLow   = "low"
	MoodBad   = "bad"
)

type MoodCheckin struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	DateKey   string    `db:"date_key" json:"date_key"`
	Mood      string    `db:"mood" json:"mood"`
	Note      string    `db:"note" json:"note"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func ValidMood(mood string) bool {
	switch mood {
	case MoodGreat, MoodGood, MoodOkay, MoodLow, MoodBad:
		return true
	}
	return false
}

type Nudge struct {
	ID          string    `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Emoji       string    `db:"emoji" json:"emoji"`
	Message     string    `db:"message" json:"message"`
	DateKey     string    `db:"date_key" json:"date_key"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DailyLog is one member's journal entry for one business day.
type DailyLog struct {
	ID        string    `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	DateKey   string    `db:"date_key" json:"date_key"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
