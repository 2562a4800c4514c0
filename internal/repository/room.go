package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/twoofus/server/internal/model"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotMember    = errors.New("user is not a member of this room")
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room, creatorID string) error
	ByID(ctx context.Context, id string) (*model.Room, error)
	ByInviteCode(ctx context.Context, code string) (*model.Room, error)
	All(ctx context.Context) ([]*model.Room, error)
	WithAnniversary(ctx context.Context) ([]*model.Room, error)
	ForUser(ctx context.Context, userID string) ([]*model.Room, error)
	SetAnniversary(ctx context.Context, roomID string, date *string) error
	AddMember(ctx context.Context, roomID, userID string) (bool, error)
	Members(ctx context.Context, roomID string) ([]*model.RoomMember, error)
	MemberIDs(ctx context.Context, roomID string) ([]string, error)
	MembersOf(ctx context.Context, roomIDs []string) (map[string][]string, error)
	IsMember(ctx context.Context, roomID, userID string) (bool, error)
}

type roomRepository struct {
	db *sqlx.DB
}

func NewRoomRepository(db *sqlx.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create inserts the room and its first member in one transaction.
func (r *roomRepository) Create(ctx context.Context, room *model.Room, creatorID string) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (id, invite_code, anniversary_date, created_at)
		VALUES ($1, $2, $3, $4)
	`, room.ID, room.InviteCode, room.AnniversaryDate, room.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, joined_at)
		VALUES ($1, $2, $3)
	`, room.ID, creatorID, room.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add creator: %w", err)
	}

	return tx.Commit()
}

func (r *roomRepository) ByID(ctx context.Context, id string) (*model.Room, error) {
	room := &model.Room{}
	err := r.db.GetContext(ctx, room, `SELECT * FROM rooms WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) ByInviteCode(ctx context.Context, code string) (*model.Room, error) {
	room := &model.Room{}
	err := r.db.GetContext(ctx, room, `SELECT * FROM rooms WHERE invite_code = $1`, code)
	if err == sql.ErrNoRows {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) All(ctx context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	err := r.db.SelectContext(ctx, &rooms, `SELECT * FROM rooms ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) WithAnniversary(ctx context.Context) ([]*model.Room, error) {
	var rooms []*model.Room
	query := `SELECT * FROM rooms WHERE anniversary_date IS NOT NULL ORDER BY created_at ASC`
	err := r.db.SelectContext(ctx, &rooms, query)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) ForUser(ctx context.Context, userID string) ([]*model.Room, error) {
	var rooms []*model.Room
	query := `
		SELECT rooms.* FROM rooms
		JOIN room_members ON room_members.room_id = rooms.id
		WHERE room_members.user_id = $1
		ORDER BY rooms.created_at ASC
	`
	err := r.db.SelectContext(ctx, &rooms, query, userID)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *roomRepository) SetAnniversary(ctx context.Context, roomID string, date *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE rooms SET anniversary_date = $1 WHERE id = $2`, date, roomID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// AddMember reports whether a new membership row was written.
func (r *roomRepository) AddMember(ctx context.Context, roomID, userID string) (bool, error) {
	query := `
		INSERT INTO room_members (room_id, user_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, roomID, userID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *roomRepository) Members(ctx context.Context, roomID string) ([]*model.RoomMember, error) {
	var members []*model.RoomMember
	query := `SELECT * FROM room_members WHERE room_id = $1 ORDER BY joined_at ASC`
	err := r.db.SelectContext(ctx, &members, query, roomID)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *roomRepository) MemberIDs(ctx context.Context, roomID string) ([]string, error) {
	var ids []string
	query := `SELECT user_id FROM room_members WHERE room_id = $1 ORDER BY joined_at ASC`
	err := r.db.SelectContext(ctx, &ids, query, roomID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// MembersOf loads the members of many rooms in one query, keyed by room id.
func (r *roomRepository) MembersOf(ctx context.Context, roomIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(roomIDs))
	if len(roomIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM room_members WHERE room_id IN (?) ORDER BY joined_at ASC`, roomIDs)
	if err != nil {
		return nil, err
	}

	var members []*model.RoomMember
	err = r.db.SelectContext(ctx, &members, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		out[m.RoomID] = append(out[m.RoomID], m.UserID)
	}
	return out, nil
}

func (r *roomRepository) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM room_members WHERE room_id = $1 AND user_id = $2`
	err := r.db.GetContext(ctx, &count, query, roomID, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
