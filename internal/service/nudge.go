package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/validation"
)

const EventNudge = "nudge"

// ErrNoPartner is returned when a nudge is sent in a room with one member.
var ErrNoPartner = errors.New("room has no partner yet")

type NudgeService struct {
	nudges    repository.NudgeRepository
	rooms     *RoomService
	notifier  Notifier
	publisher realtime.Publisher
	calendar  *datekey.Calendar
}

func NewNudgeService(nudges repository.NudgeRepository, rooms *RoomService, notifier Notifier, publisher realtime.Publisher, calendar *datekey.Calendar) *NudgeService {
	return &NudgeService{nudges: nudges, rooms: rooms, notifier: notifier, publisher: publisher, calendar: calendar}
}

// Send stores a nudge for the partner, publishes it on the room and pushes
// it to the partner's devices. Push failures are logged.
func (s *NudgeService) Send(ctx context.Context, roomID, senderID, emoji, message string, now time.Time) (*model.Nudge, error) {
	emoji, err := validation.Emoji(emoji)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	message, err = validation.OptionalText("message", message, validation.MaxMessageLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	partner, err := s.rooms.Partner(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}
	if partner == "" {
		return nil, ErrNoPartner
	}

	nudge := &model.Nudge{
		RoomID:      roomID,
		SenderID:    senderID,
		RecipientID: partner,
		Emoji:       emoji,
		Message:     message,
		DateKey:     s.calendar.Key(now),
	}
	err = s.nudges.Create(ctx, nudge)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, roomID, EventNudge, nudge)

	body := message
	if body == "" {
		body = "Your partner is thinking of you."
	}
	_, err = s.notifier.Notify(ctx, partner, &roomID, model.NotifKindNudge, model.PushMessage{
		Title: emoji + " Nudge",
		Body:  body,
		URL:   "/rooms/" + roomID,
		Tag:   "nudge-" + nudge.ID,
	})
	if err != nil {
		slog.Warn("failed to notify nudge recipient", "room_id", roomID, "user_id", partner, "error", err)
	}

	return nudge, nil
}

func (s *NudgeService) Nudges(ctx context.Context, roomID, fromKey, toKey string) ([]*model.Nudge, error) {
	if !datekey.Valid(fromKey) || !datekey.Valid(toKey) {
		return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrInvalidInput)
	}
	return s.nudges.InRange(ctx, roomID, fromKey, toKey)
}
