package model

import "time"

type SharedEvent struct {
	ID             string     `db:"id" json:"id"`
	RoomID         string     `db:"room_id" json:"room_id"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	Title          string     `db:"title" json:"title"`
	Notes          string     `db:"notes" json:"notes"`
	StartsAt       time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt         *time.Time `db:"ends_at" json:"ends_at"`
	ReminderAt     *time.Time `db:"reminder_at" json:"reminder_at"`
	ReminderSentAt *time.Time `db:"reminder_sent_at" json:"reminder_sent_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type SharedTask struct {
	ID             string     `db:"id" json:"id"`
	RoomID         string     `db:"room_id" json:"room_id"`
	CreatedBy      string     `db:"created_by" json:"created_by"`
	Title          string     `db:"title" json:"title"`
	Notes          string     `db:"notes" json:"notes"`
	DueDate        *string    `db:"due_date" json:"due_date"` // YYYY-MM-DD
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at"`
	ReminderAt     *time.Time `db:"reminder_at" json:"reminder_at"`
	ReminderSentAt *time.Time `db:"reminder_sent_at" json:"reminder_sent_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type Milestone struct {
	ID         string    `db:"id" json:"id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	Title      string    `db:"title" json:"title"`
	HappenedOn string    `db:"happened_on" json:"happened_on"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type Memory struct {
	ID         string    `db:"id" json:"id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	Title      string    `db:"title" json:"title"`
	Body       string    `db:"body" json:"body"`
	HappenedOn string    `db:"happened_on" json:"happened_on"`
	PhotoKey   *string   `db:"photo_key" json:"photo_key"` // object key in the photo bucket
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type DateIdea struct {
	ID          string    `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	CreatedBy   string    `db:"created_by" json:"created_by"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DateCompletion is a planned (and later completed) date built from an idea.
type DateCompletion struct {
	ID          string     `db:"id" json:"id"`
	RoomID      string     `db:"room_id" json:"room_id"`
	DateIdeaID  string     `db:"date_idea_id" json:"date_idea_id"`
	EventID     *string    `db:"event_id" json:"event_id"`
	PlannedFor  string     `db:"planned_for" json:"planned_for"` // YYYY-MM-DD
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
	Rating      *int       `db:"rating" json:"rating"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// DatePlan is a completion joined with its idea title, as shown in the feed.
type DatePlan struct {
	DateCompletion
	Title string `db:"title" json:"title"`
}
