package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/realtime"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/storage"
	"github.com/twoofus/server/internal/validation"
)

// EventPlanner is published on the room whenever planner data changes.
const EventPlanner = "planner"

type EventInput struct {
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     *time.Time `json:"ends_at"`
	ReminderAt *time.Time `json:"reminder_at"`
}

type TaskInput struct {
	Title      string     `json:"title"`
	Notes      string     `json:"notes"`
	DueDate    *string    `json:"due_date"`
	ReminderAt *time.Time `json:"reminder_at"`
}

type MemoryInput struct {
	Title      string  `json:"title"`
	Body       string  `json:"body"`
	HappenedOn string  `json:"happened_on"`
	PhotoKey   *string `json:"photo_key"`
}

type PlannerService struct {
	events     repository.EventRepository
	tasks      repository.TaskRepository
	milestones repository.MilestoneRepository
	memories   repository.MemoryRepository
	ideas      repository.DateIdeaRepository
	photos     storage.PhotoStore
	publisher  realtime.Publisher
	calendar   *datekey.Calendar
}

type PlannerRepositories struct {
	Events     repository.EventRepository
	Tasks      repository.TaskRepository
	Milestones repository.MilestoneRepository
	Memories   repository.MemoryRepository
	Ideas      repository.DateIdeaRepository
}

// NewPlannerService builds the planner. photos may be nil.
func NewPlannerService(repos PlannerRepositories, photos storage.PhotoStore, publisher realtime.Publisher, calendar *datekey.Calendar) *PlannerService {
	return &PlannerService{
		events:     repos.Events,
		tasks:      repos.Tasks,
		milestones: repos.Milestones,
		memories:   repos.Memories,
		ideas:      repos.Ideas,
		photos:     photos,
		publisher:  publisher,
		calendar:   calendar,
	}
}

func (s *PlannerService) CreateEvent(ctx context.Context, roomID, userID string, in EventInput) (*model.SharedEvent, error) {
	event, err := s.buildEvent(roomID, userID, in)
	if err != nil {
		return nil, err
	}
	err = s.events.Create(ctx, event)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, roomID, "event", event.ID)
	return event, nil
}

func (s *PlannerService) buildEvent(roomID, userID string, in EventInput) (*model.SharedEvent, error) {
	title, err := validation.Text("title", in.Title, validation.MaxTitleLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	notes, err := validation.OptionalText("notes", in.Notes, validation.MaxNoteLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.StartsAt.IsZero() {
		return nil, fmt.Errorf("%w: starts_at is required", ErrInvalidInput)
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at is before starts_at", ErrInvalidInput)
	}

	return &model.SharedEvent{
		RoomID:     roomID,
		CreatedBy:  userID,
		Title:      title,
		Notes:      notes,
		StartsAt:   in.StartsAt,
		EndsAt:     in.EndsAt,
		ReminderAt: in.ReminderAt,
	}, nil
}

func (s *PlannerService) Events(ctx context.Context, roomID string, from, to time.Time) ([]*model.SharedEvent, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: empty time range", ErrInvalidInput)
	}
	return s.events.InRange(ctx, roomID, from, to)
}

func (s *PlannerService) DeleteEvent(ctx context.Context, roomID, id string) error {
	err := s.events.Delete(ctx, roomID, id)
	if err != nil {
		return err
	}
	s.changed(ctx, roomID, "event", id)
	return nil
}

func (s *PlannerService) CreateTask(ctx context.Context, roomID, userID string, in TaskInput) (*model.SharedTask, error) {
	title, err := validation.Text("title", in.Title, validation.MaxTitleLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	notes, err := validation.OptionalText("notes", in.Notes, validation.MaxNoteLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.DueDate != nil && !datekey.Valid(*in.DueDate) {
		return nil, fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrInvalidInput)
	}

	task := &model.SharedTask{
		RoomID:     roomID,
		CreatedBy:  userID,
		Title:      title,
		Notes:      notes,
		DueDate:    in.DueDate,
		ReminderAt: in.ReminderAt,
	}
	err = s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, roomID, "task", task.ID)
	return task, nil
}

func (s *PlannerService) Tasks(ctx context.Context, roomID string, includeCompleted bool) ([]*model.SharedTask, error) {
	return s.tasks.ByRoom(ctx, roomID, includeCompleted)
}

func (s *PlannerService) CompleteTask(ctx context.Context, roomID, id string) error {
	err := s.tasks.Complete(ctx, roomID, id, time.Now())
	if err != nil {
		return err
	}
	s.changed(ctx, roomID, "task", id)
	return nil
}

func (s *PlannerService) DeleteTask(ctx context.Context, roomID, id string) error {
	err := s.tasks.Delete(ctx, roomID, id)
	if err != nil {
		return err
	}
	s.changed(ctx, roomID, "task", id)
	return nil
}

func (s *PlannerService) CreateMilestone(ctx context.Context, roomID, userID, title, happenedOn string) (*model.Milestone, error) {
	title, err := validation.Text("title", title, validation.MaxTitleLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !datekey.Valid(happenedOn) {
		return nil, fmt.Errorf("%w: happened_on must be YYYY-MM-DD", ErrInvalidInput)
	}

	m := &model.Milestone{RoomID: roomID, CreatedBy: userID, Title: title, HappenedOn: happenedOn}
	err = s.milestones.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, roomID, "milestone", m.ID)
	return m, nil
}

func (s *PlannerService) Milestones(ctx context.Context, roomID string) ([]*model.Milestone, error) {
	return s.milestones.ByRoom(ctx, roomID)
}

func (s *PlannerService) DeleteMilestone(ctx context.Context, roomID, id string) error {
	return s.milestones.Delete(ctx, roomID, id)
}

func (s *PlannerService) CreateMemory(ctx context.Context, roomID, userID string, in MemoryInput) (*model.Memory, error) {
	title, err := validation.Text("title", in.Title, validation.MaxTitleLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	body, err := validation.OptionalText("body", in.Body, validation.MaxJournalLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !datekey.Valid(in.HappenedOn) {
		return nil, fmt.Errorf("%w: happened_on must be YYYY-MM-DD", ErrInvalidInput)
	}
	if in.PhotoKey != nil {
		if err := validation.PhotoKey(roomID, *in.PhotoKey); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	m := &model.Memory{
		RoomID:     roomID,
		CreatedBy:  userID,
		Title:      title,
		Body:       body,
		HappenedOn: in.HappenedOn,
		PhotoKey:   in.PhotoKey,
	}
	err = s.memories.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, roomID, "memory", m.ID)
	return m, nil
}

func (s *PlannerService) Memories(ctx context.Context, roomID string) ([]*model.MemoryItem, error) {
	memories, err := s.memories.ByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	items := make([]*model.MemoryItem, 0, len(memories))
	for _, m := range memories {
		item := &model.MemoryItem{Memory: m}
		if m.PhotoKey != nil && s.photos != nil {
			url, err := s.photos.PresignedURL(ctx, *m.PhotoKey)
			if err != nil {
				slog.Warn("failed to presign memory photo", "id", m.ID, "error", err)
			}
			item.PhotoURL = url
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteMemory removes the memory and then its photo. A photo that cannot be
// removed is logged and left in the bucket.
func (s *PlannerService) DeleteMemory(ctx context.Context, roomID, id string) error {
	m, err := s.memories.ByID(ctx, id)
	if err != nil {
		return err
	}
	if m.RoomID != roomID {
		return repository.ErrMemoryNotFound
	}

	err = s.memories.Delete(ctx, roomID, id)
	if err != nil {
		return err
	}

	if m.PhotoKey != nil && s.photos != nil {
		if err := s.photos.Delete(ctx, *m.PhotoKey); err != nil {
			slog.Error("failed to delete memory photo", "id", id, "key", *m.PhotoKey, "error", err)
		}
	}
	s.changed(ctx, roomID, "memory", id)
	return nil
}

func (s *PlannerService) CreateDateIdea(ctx context.Context, roomID, userID string, idea *model.DateIdea) (*model.DateIdea, error) {
	title, err := validation.Text("title", idea.Title, validation.MaxTitleLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	description, err := validation.OptionalText("description", idea.Description, validation.MaxNoteLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	category, err := validation.OptionalText("category", idea.Category, 50)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	created := &model.DateIdea{
		RoomID:      roomID,
		CreatedBy:   userID,
		Title:       title,
		Description: description,
		Category:    category,
	}
	err = s.ideas.Create(ctx, created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PlannerService) DateIdeas(ctx context.Context, roomID string) ([]*model.DateIdea, error) {
	return s.ideas.ByRoom(ctx, roomID)
}

// PlanDate puts a date idea on the calendar: one event plus one plan record,
// written together.
func (s *PlannerService) PlanDate(ctx context.Context, roomID, userID, ideaID string, startsAt time.Time, reminderAt *time.Time) (*model.SharedEvent, *model.DateCompletion, error) {
	idea, err := s.ideas.ByID(ctx, ideaID)
	if err != nil {
		return nil, nil, err
	}
	if idea.RoomID != roomID {
		return nil, nil, repository.ErrDateIdeaNotFound
	}

	event, err := s.buildEvent(roomID, userID, EventInput{
		Title:      idea.Title,
		Notes:      idea.Description,
		StartsAt:   startsAt,
		ReminderAt: reminderAt,
	})
	if err != nil {
		return nil, nil, err
	}

	plan := &model.DateCompletion{
		RoomID:     roomID,
		DateIdeaID: idea.ID,
		PlannedFor: s.calendar.Key(startsAt),
	}
	err = s.ideas.PlanDate(ctx, event, plan)
	if err != nil {
		return nil, nil, err
	}

	s.changed(ctx, roomID, "dateplan", plan.ID)
	return event, plan, nil
}

func (s *PlannerService) CompleteDatePlan(ctx context.Context, roomID, planID string, rating *int) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	err := s.ideas.CompletePlan(ctx, roomID, planID, rating, time.Now())
	if err != nil {
		return err
	}
	s.changed(ctx, roomID, "dateplan", planID)
	return nil
}

func (s *PlannerService) changed(ctx context.Context, roomID, kind, id string) {
	publish(ctx, s.publisher, roomID, EventPlanner, map[string]string{"kind": kind, "id": id})
}
