package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
)

// ReminderService sends due event and task reminders. Each row is guarded by
// its reminder_sent_at column: a row is notified and then marked, and the mark
// only succeeds while the column is still empty.
type ReminderService struct {
	events   repository.EventRepository
	tasks    repository.TaskRepository
	rooms    repository.RoomRepository
	notifier Notifier
	loc      *time.Location
	batch    int
}

func NewReminderService(
	events repository.EventRepository,
	tasks repository.TaskRepository,
	rooms repository.RoomRepository,
	notifier Notifier,
	loc *time.Location,
	batch int,
) *ReminderService {
	return &ReminderService{
		events:   events,
		tasks:    tasks,
		rooms:    rooms,
		notifier: notifier,
		loc:      loc,
		batch:    batch,
	}
}

func (s *ReminderService) Scan(ctx context.Context, now time.Time) (model.ReminderSummary, error) {
	var summary model.ReminderSummary

	events, err := s.events.DueReminders(ctx, now, s.batch)
	if err != nil {
		return summary, fmt.Errorf("failed to load due events: %w", err)
	}
	summary.Events.Due = len(events)
	for _, ev := range events {
		msg := model.PushMessage{
			Title: ev.Title,
			Body:  "Coming up " + ev.StartsAt.In(s.loc).Format("Mon Jan 2, 3:04 PM"),
			URL:   "/planner/events/" + ev.ID,
			Tag:   "event-" + ev.ID,
		}
		s.remind(ctx, &summary.Events, "event", ev.ID, ev.RoomID, model.NotifKindEvent, msg, func() (bool, error) {
			return s.events.MarkReminderSent(ctx, ev.ID, now)
		})
	}

	tasks, err := s.tasks.DueReminders(ctx, now, s.batch)
	if err != nil {
		return summary, fmt.Errorf("failed to load due tasks: %w", err)
	}
	summary.Tasks.Due = len(tasks)
	for _, task := range tasks {
		body := "Don't forget this one"
		if task.DueDate != nil {
			body = "Due " + *task.DueDate
		}
		msg := model.PushMessage{
			Title: task.Title,
			Body:  body,
			URL:   "/planner/tasks/" + task.ID,
			Tag:   "task-" + task.ID,
		}
		s.remind(ctx, &summary.Tasks, "task", task.ID, task.RoomID, model.NotifKindTask, msg, func() (bool, error) {
			return s.tasks.MarkReminderSent(ctx, task.ID, now)
		})
	}

	slog.Info("reminder scan finished",
		"events_due", summary.Events.Due,
		"events_marked", summary.Events.Marked,
		"tasks_due", summary.Tasks.Due,
		"tasks_marked", summary.Tasks.Marked,
	)
	return summary, nil
}

func (s *ReminderService) remind(
	ctx context.Context,
	counts *model.ReminderCounts,
	itemType, itemID, roomID, kind string,
	msg model.PushMessage,
	mark func() (bool, error),
) {
	members, err := s.rooms.MemberIDs(ctx, roomID)
	if err != nil {
		slog.Error("failed to load room members", "type", itemType, "id", itemID, "room_id", roomID, "error", err)
		counts.Failed++
		return
	}

	for _, userID := range members {
		_, err := s.notifier.Notify(ctx, userID, &roomID, kind, msg)
		if err != nil {
			slog.Error("failed to notify member", "type", itemType, "id", itemID, "user_id", userID, "error", err)
			counts.Failed++
			continue
		}
		counts.Notified++
	}

	marked, err := mark()
	if err != nil {
		slog.Error("failed to mark reminder sent", "type", itemType, "id", itemID, "error", err)
		counts.Failed++
		return
	}
	if !marked {
		slog.Warn("reminder already marked by another scan", "type", itemType, "id", itemID)
		return
	}
	counts.Marked++
}
