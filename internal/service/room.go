package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/validation"
)

// Invite codes avoid characters that are easy to misread.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const inviteCodeLength = 8

type RoomService struct {
	rooms    repository.RoomRepository
	profiles repository.ProfileRepository
	email    *EmailService
}

func NewRoomService(rooms repository.RoomRepository, profiles repository.ProfileRepository, email *EmailService) *RoomService {
	return &RoomService{
		rooms:    rooms,
		profiles: profiles,
		email:    email,
	}
}

func (s *RoomService) Create(ctx context.Context, userID string) (*model.Room, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		code, err := newInviteCode()
		if err != nil {
			return nil, err
		}
		room := &model.Room{InviteCode: code}
		lastErr = s.rooms.Create(ctx, room, userID)
		if lastErr == nil {
			slog.Info("room created", "room_id", room.ID, "user_id", userID)
			return room, nil
		}
		slog.Warn("room create failed, retrying with a new code", "attempt", attempt+1, "error", lastErr)
	}
	return nil, fmt.Errorf("failed to create room: %w", lastErr)
}

// Join adds userID to the room with the invite code. Joining twice is a
// no-op; a third person gets ErrRoomFull.
func (s *RoomService) Join(ctx context.Context, userID, code string) (*model.Room, error) {
	room, err := s.rooms.ByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}

	members, err := s.rooms.MemberIDs(ctx, room.ID)
	if err != nil {
		return nil, err
	}
	for _, id := range members {
		if id == userID {
			return room, nil
		}
	}
	if len(members) >= model.MaxRoomMembers {
		return nil, ErrRoomFull
	}

	_, err = s.rooms.AddMember(ctx, room.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}

	slog.Info("room joined", "room_id", room.ID, "user_id", userID)
	return room, nil
}

func (s *RoomService) Room(ctx context.Context, roomID string) (*model.Room, error) {
	return s.rooms.ByID(ctx, roomID)
}

func (s *RoomService) RoomsForUser(ctx context.Context, userID string) ([]*model.Room, error) {
	return s.rooms.ForUser(ctx, userID)
}

func (s *RoomService) Members(ctx context.Context, roomID string) ([]*model.RoomMember, error) {
	return s.rooms.Members(ctx, roomID)
}

// RequireMember returns repository.ErrNotMember unless userID belongs to roomID.
func (s *RoomService) RequireMember(ctx context.Context, roomID, userID string) error {
	ok, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrNotMember
	}
	return nil
}

// Partner returns the other member of the room, or "" while the room has
// only one member.
func (s *RoomService) Partner(ctx context.Context, roomID, userID string) (string, error) {
	members, err := s.rooms.MemberIDs(ctx, roomID)
	if err != nil {
		return "", err
	}
	for _, id := range members {
		if id != userID {
			return id, nil
		}
	}
	return "", nil
}

// SetAnniversary stores date (YYYY-MM-DD); an empty date clears it.
func (s *RoomService) SetAnniversary(ctx context.Context, roomID, date string) error {
	if date == "" {
		return s.rooms.SetAnniversary(ctx, roomID, nil)
	}
	if !datekey.Valid(date) {
		return fmt.Errorf("%w: anniversary must be YYYY-MM-DD", ErrInvalidInput)
	}
	return s.rooms.SetAnniversary(ctx, roomID, &date)
}

// Invite emails the room's invite code to the partner.
func (s *RoomService) Invite(ctx context.Context, roomID, senderID, email string) error {
	email, err := validation.Email(email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	room, err := s.rooms.ByID(ctx, roomID)
	if err != nil {
		return err
	}

	name := ""
	profile, err := s.profiles.ByUserID(ctx, senderID)
	if err == nil {
		name = profile.DisplayName
	} else if !errors.Is(err, repository.ErrProfileNotFound) {
		return err
	}

	return s.email.SendRoomInvite(ctx, email, name, room.InviteCode)
}

func newInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}
