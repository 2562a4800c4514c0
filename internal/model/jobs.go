package model

type AssignSummary struct {
	DateKey string `json:"date_key"`
	Rooms   int    `json:"rooms"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

type ReminderCounts struct {
	Due      int `json:"due"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
	Marked   int `json:"marked"`
}

type ReminderSummary struct {
	Events ReminderCounts `json:"events"`
	Tasks  ReminderCounts `json:"tasks"`
}

const (
	ReminderSevenDays = "7_days"
	ReminderOneDay    = "1_day"
	ReminderToday     = "today"
)

type AnniversarySummary struct {
	Rooms     int `json:"rooms"`
	Reminders int `json:"reminders"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}
