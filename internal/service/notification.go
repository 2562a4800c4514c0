package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/service/push"
)

const inboxLimit = 50

// Notifier is what jobs and services use to reach a user.
type Notifier interface {
	Notify(ctx context.Context, userID string, roomID *string, kind string, msg model.PushMessage) (model.DispatchResult, error)
}

type NotificationService struct {
	subs          repository.PushSubscriptionRepository
	notifications repository.NotificationRepository
	sender        push.Sender
	appURL        string
}

func NewNotificationService(
	subs repository.PushSubscriptionRepository,
	notifications repository.NotificationRepository,
	sender push.Sender,
	appURL string,
) *NotificationService {
	return &NotificationService{
		subs:          subs,
		notifications: notifications,
		sender:        sender,
		appURL:        strings.TrimSuffix(appURL, "/"),
	}
}

// Dispatch sends msg to every endpoint of userID. Endpoints fail
// independently; gone endpoints are deleted. There are no retries.
func (s *NotificationService) Dispatch(ctx context.Context, userID string, msg model.PushMessage) (model.DispatchResult, error) {
	var result model.DispatchResult

	subs, err := s.subs.ByUser(ctx, userID)
	if err != nil {
		return result, fmt.Errorf("failed to load push subscriptions: %w", err)
	}

	msg.URL = s.absolute(msg.URL)

	for _, sub := range subs {
		err := s.sender.Send(ctx, sub, msg)
		switch {
		case err == nil:
			result.Sent++
			if err := s.subs.Touch(ctx, sub.ID, time.Now()); err != nil {
				slog.Warn("failed to update subscription last use", "subscription_id", sub.ID, "error", err)
			}

		case errors.Is(err, push.ErrGone):
			result.Failed++
			if err := s.subs.Delete(ctx, sub.ID); err != nil {
				slog.Error("failed to delete gone subscription", "subscription_id", sub.ID, "error", err)
				continue
			}
			result.Cleaned++
			slog.Info("push subscription removed", "user_id", userID, "subscription_id", sub.ID)

		default:
			result.Failed++
			slog.Warn("push delivery failed", "user_id", userID, "subscription_id", sub.ID, "error", err)
		}
	}

	return result, nil
}

// Notify stores an inbox entry for the user, then pushes it with the unread
// count as badge.
func (s *NotificationService) Notify(ctx context.Context, userID string, roomID *string, kind string, msg model.PushMessage) (model.DispatchResult, error) {
	err := s.notifications.Create(ctx, &model.Notification{
		UserID: userID,
		RoomID: roomID,
		Kind:   kind,
		Title:  msg.Title,
		Body:   msg.Body,
		URL:    msg.URL,
	})
	if err != nil {
		return model.DispatchResult{}, fmt.Errorf("failed to store notification: %w", err)
	}

	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		slog.Warn("failed to count unread notifications", "user_id", userID, "error", err)
	} else {
		msg.Badge = unread
	}

	return s.Dispatch(ctx, userID, msg)
}

func (s *NotificationService) Inbox(ctx context.Context, userID string) ([]*model.Notification, int, error) {
	items, err := s.notifications.ByUser(ctx, userID, inboxLimit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notifications.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, userID, id, time.Now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID, time.Now())
}

func (s *NotificationService) Subscribe(ctx context.Context, sub *model.PushSubscription) error {
	if sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
		return ErrInvalidSubscription
	}
	if !strings.HasPrefix(sub.Endpoint, "https://") {
		return ErrInvalidSubscription
	}
	return s.subs.Upsert(ctx, sub)
}

func (s *NotificationService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	return s.subs.DeleteByEndpoint(ctx, userID, endpoint)
}

func (s *NotificationService) absolute(url string) string {
	if url == "" {
		return s.appURL + "/"
	}
	if strings.HasPrefix(url, "/") {
		return s.appURL + url
	}
	return url
}
