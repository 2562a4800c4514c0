package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/validation"
)

// Realtime event types published on a daily question.
const (
	EventAnswer   = "answer"
	EventReaction = "reaction"
	EventMessage  = "message"
)

// AnswerService handles answers, reactions and messages on daily questions.
// Callers have already checked that the user belongs to the room.
type AnswerService struct {
	dailies   repository.DailyQuestionRepository
	answers   repository.AnswerRepository
	reactions repository.ReactionRepository
	messages  repository.MessageRepository
	rooms     *RoomService
	notifier  Notifier
	publisher realtime.Publisher
}

func NewAnswerService(
	dailies repository.DailyQuestionRepository,
	answers repository.AnswerRepository,
	reactions repository.ReactionRepository,
	messages repository.MessageRepository,
	rooms *RoomService,
	notifier Notifier,
	publisher realtime.Publisher,
) *AnswerService {
	return &AnswerService{
		dailies:   dailies,
		answers:   answers,
		reactions: reactions,
		messages:  messages,
		rooms:     rooms,
		notifier:  notifier,
		publisher: publisher,
	}
}

// Question loads a daily question and checks it belongs to roomID.
func (s *AnswerService) Question(ctx context.Context, roomID, dailyQuestionID string) (*model.DailyQuestionView, error) {
	dq, err := s.dailies.ByID(ctx, dailyQuestionID)
	if err != nil {
		return nil, err
	}
	if dq.RoomID != roomID {
		return nil, repository.ErrDailyQuestionNotFound
	}
	return dq, nil
}

// Submit stores the user's answer. Answers cannot be edited; a second
// submission returns repository.ErrAlreadyAnswered.
func (s *AnswerService) Submit(ctx context.Context, roomID, dailyQuestionID, userID, body string) (*model.Answer, error) {
	body, err := validation.Text("answer", body, validation.MaxAnswerLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	dq, err := s.Question(ctx, roomID, dailyQuestionID)
	if err != nil {
		return nil, err
	}

	answer := &model.Answer{DailyQuestionID: dq.ID, UserID: userID, Body: body}
	err = s.answers.Create(ctx, answer)
	if err != nil {
		return nil, err
	}

	// The partner only learns that an answer exists, not what it says.
	s.publish(ctx, dq.ID, EventAnswer, map[string]string{"user_id": userID})

	s.notifyPartner(ctx, roomID, userID, model.NotifKindAnswer, model.PushMessage{
		Title: "Your partner answered today's question",
		Body:  "Answer too to see what they said.",
		URL:   "/questions/" + dq.ID,
		Tag:   "answer-" + dq.ID,
	})

	return answer, nil
}

// Thread returns a question with its answers, reactions and messages. The
// partner's answer stays hidden until userID has answered.
func (s *AnswerService) Thread(ctx context.Context, roomID, dailyQuestionID, userID string) (*model.QuestionThread, error) {
	dq, err := s.Question(ctx, roomID, dailyQuestionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answers.ByDailyQuestion(ctx, dq.ID)
	if err != nil {
		return nil, err
	}
	reactions, err := s.reactions.ByDailyQuestion(ctx, dq.ID)
	if err != nil {
		return nil, err
	}
	messages, err := s.messages.ByDailyQuestion(ctx, dq.ID)
	if err != nil {
		return nil, err
	}

	thread := &model.QuestionThread{
		Question:  dq,
		Answers:   []*model.Answer{},
		Reactions: reactions,
		Messages:  messages,
	}

	answered := false
	for _, a := range answers {
		if a.UserID == userID {
			answered = true
		}
	}
	for _, a := range answers {
		if a.UserID != userID && !answered {
			thread.PartnerAnswered = true
			continue
		}
		thread.Answers = append(thread.Answers, a)
	}

	return thread, nil
}

// ToggleReaction sets the user's reaction. Sending the current emoji again
// removes it; a different emoji replaces it. It returns the reaction in
// place afterwards, or nil.
func (s *AnswerService) ToggleReaction(ctx context.Context, roomID, dailyQuestionID, userID, emoji string) (*model.Reaction, error) {
	emoji, err := validation.Emoji(emoji)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	dq, err := s.Question(ctx, roomID, dailyQuestionID)
	if err != nil {
		return nil, err
	}

	current, err := s.reactions.ByUser(ctx, dq.ID, userID)
	if err != nil {
		return nil, err
	}

	if current != nil && current.Emoji == emoji {
		err = s.reactions.Delete(ctx, dq.ID, userID)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, dq.ID, EventReaction, map[string]any{"user_id": userID, "emoji": nil})
		return nil, nil
	}

	reaction := &model.Reaction{DailyQuestionID: dq.ID, UserID: userID, Emoji: emoji}
	err = s.reactions.Upsert(ctx, reaction)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, dq.ID, EventReaction, reaction)
	return reaction, nil
}

func (s *AnswerService) PostMessage(ctx context.Context, roomID, dailyQuestionID, userID, body string) (*model.Message, error) {
	body, err := validation.Text("message", body, validation.MaxMessageLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	dq, err := s.Question(ctx, roomID, dailyQuestionID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{DailyQuestionID: dq.ID, UserID: userID, Body: body}
	err = s.messages.Create(ctx, msg)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, dq.ID, EventMessage, msg)

	s.notifyPartner(ctx, roomID, userID, model.NotifKindMessage, model.PushMessage{
		Title: "New message",
		Body:  body,
		URL:   "/questions/" + dq.ID,
		Tag:   "message-" + dq.ID,
	})
	return msg, nil
}

// notifyPartner pushes msg to the other member of the room, if any. Failures
// are logged.
func (s *AnswerService) notifyPartner(ctx context.Context, roomID, userID, kind string, msg model.PushMessage) {
	partner, err := s.rooms.Partner(ctx, roomID, userID)
	if err != nil {
		slog.Warn("failed to load partner", "room_id", roomID, "error", err)
		return
	}
	if partner == "" {
		return
	}
	_, err = s.notifier.Notify(ctx, partner, &roomID, kind, msg)
	if err != nil {
		slog.Warn("failed to notify partner", "room_id", roomID, "user_id", partner, "error", err)
	}
}

func (s *AnswerService) Messages(ctx context.Context, roomID, dailyQuestionID string) ([]*model.Message, error) {
	dq, err := s.Question(ctx, roomID, dailyQuestionID)
	if err != nil {
		return nil, err
	}
	return s.messages.ByDailyQuestion(ctx, dq.ID)
}

func (s *AnswerService) publish(ctx context.Context, resource, typ string, payload any) {
	publish(ctx, s.publisher, resource, typ, payload)
}

// publish sends a realtime event. Delivery is best effort; the write that
// triggered it has already succeeded.
func publish(ctx context.Context, publisher realtime.Publisher, resource, typ string, payload any) {
	if publisher == nil {
		return
	}
	ev, err := realtime.NewEvent(resource, typ, payload)
	if err == nil {
		err = publisher.Publish(ctx, ev)
	}
	if err != nil {
		slog.Warn("failed to publish realtime event", "resource", resource, "type", typ, "error", err)
	}
}
