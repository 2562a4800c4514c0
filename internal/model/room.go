package model

import "time"

// MaxRoomMembers is the number of people that share a room.
const MaxRoomMembers = 2

type Room struct {
	ID              string    `db:"id" json:"id"`
	InviteCode      string    `db:"invite_code" json:"invite_code"`
	AnniversaryDate *string   `db:"anniversary_date" json:"anniversary_date"` // YYYY-MM-DD
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

type RoomMember struct {
	RoomID   string    `db:"room_id" json:"room_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

type Profile struct {
	UserID      string    `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Locale      string    `db:"locale" json:"locale"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
