package model

import "time"

const (
	DayStatusBoth   = "both"
	DayStatusOne    = "one"
	DayStatusMissed = "missed"
)

// RoomStats is a derived snapshot, recomputed whenever activity is read.
type RoomStats struct {
	RoomID        string    `db:"room_id" json:"room_id"`
	CurrentStreak int       `db:"current_streak" json:"current_streak"`
	BestStreak    int       `db:"best_streak" json:"best_streak"`
	TotalAnswered int       `db:"total_answered" json:"total_answered"`
	ComputedAt    time.Time `db:"computed_at" json:"computed_at"`
}

type ActivityDay struct {
	DateKey string `json:"date_key"`
	Status  string `json:"status"`
}

type Activity struct {
	Days          []ActivityDay `json:"days"`
	CurrentStreak int           `json:"current_streak"`
	BestStreak    int           `json:"best_streak"`
	TotalAnswered int           `json:"total_answered"`
}
