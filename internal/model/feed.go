package model

import "time"

const (
	FeedTypeQuestion  = "question"
	FeedTypeJournal   = "journal"
	FeedTypeMemory    = "memory"
	FeedTypeMilestone = "milestone"
	FeedTypeEvent     = "event"
	FeedTypeTask      = "task"
	FeedTypeDatePlan  = "dateplan"
	FeedTypeNudge     = "nudge"
)

// FeedPriority orders items that share a date-key. Lower sorts first.
var FeedPriority = map[string]int{
	FeedTypeQuestion:  0,
	FeedTypeJournal:   1,
	FeedTypeMemory:    2,
	FeedTypeMilestone: 3,
	FeedTypeEvent:     4,
	FeedTypeTask:      5,
	FeedTypeDatePlan:  6,
	FeedTypeNudge:     7,
}

type FeedItem struct {
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	DateKey   string    `json:"date_key"`
	CreatedAt time.Time `json:"created_at"`
	Data      any       `json:"data"`
}

// JournalGroup collects one member's journal for one date-key.
type JournalGroup struct {
	UserID  string `json:"user_id"`
	DateKey string `json:"date_key"`
	Body    string `json:"body"`
	HTML    string `json:"html"`
}

// MemoryItem is a memory with a resolved photo link.
type MemoryItem struct {
	*Memory
	PhotoURL string `json:"photo_url,omitempty"`
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextBefore string     `json:"next_before,omitempty"`
	Done       bool       `json:"done"`
}
