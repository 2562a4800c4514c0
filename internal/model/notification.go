package model

import "time"

const (
	NotifKindAnswer      = "answer"
	NotifKindNudge       = "nudge"
	NotifKindEvent       = "event_reminder"
	NotifKindTask        = "task_reminder"
	NotifKindAnniversary = "anniversary"
	NotifKindMessage     = "message"
)

type Notification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	RoomID    *string    `db:"room_id" json:"room_id"`
	Kind      string     `db:"kind" json:"kind"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	URL       string     `db:"url" json:"url"`
	ReadAt    *time.Time `db:"read_at" json:"read_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type PushSubscription struct {
	ID         string     `db:"id" json:"id"`
	UserID     string     `db:"user_id" json:"user_id"`
	Endpoint   string     `db:"endpoint" json:"endpoint"`
	P256dh     string     `db:"p256dh" json:"p256dh"`
	Auth       string     `db:"auth" json:"auth"`
	UserAgent  string     `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	LastUsedAt *time.Time `db:"last_used_at" json:"last_used_at"`
}

// PushMessage is the payload delivered to every endpoint of a user.
type PushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Tag   string `json:"tag,omitempty"`
	Badge int    `json:"badge"`
}

// DispatchResult counts the outcome of one fan-out.
type DispatchResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Cleaned int `json:"cleaned"`
}

func (r *DispatchResult) Add(other DispatchResult) {
	r.Sent += other.Sent
	r.Failed += other.Failed
	r.Cleaned += other.Cleaned
}
