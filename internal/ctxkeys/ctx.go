package ctxkeys

import "context"

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoomIDKey contextKey = "room_id"
)

// UserID returns the authenticated user, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// RoomID returns the room whose membership was checked for this request.
func RoomID(ctx context.Context) string {
	id, _ := ctx.Value(RoomIDKey).(string)
	return id
}

func WithRoomID(ctx context.Context, roomID string) context.Context {
	return context.WithValue(ctx, RoomIDKey, roomID)
}
