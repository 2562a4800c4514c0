package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/markdown"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/storage"
)

// earliestKey opens the range of the last page so nothing older is lost.
const earliestKey = "0001-01-01"

type FeedService struct {
	dailies    repository.DailyQuestionRepository
	logs       repository.DailyLogRepository
	nudges     repository.NudgeRepository
	events     repository.EventRepository
	tasks      repository.TaskRepository
	memories   repository.MemoryRepository
	milestones repository.MilestoneRepository
	ideas      repository.DateIdeaRepository
	photos     storage.PhotoStore
	parser     *markdown.Parser
	calendar   *datekey.Calendar
	pageSize   int
}

type FeedRepositories struct {
	Dailies    repository.DailyQuestionRepository
	Logs       repository.DailyLogRepository
	Nudges     repository.NudgeRepository
	Events     repository.EventRepository
	Tasks      repository.TaskRepository
	Memories   repository.MemoryRepository
	Milestones repository.MilestoneRepository
	Ideas      repository.DateIdeaRepository
}

// NewFeedService builds the feed. photos may be nil when no bucket is set.
func NewFeedService(repos FeedRepositories, photos storage.PhotoStore, calendar *datekey.Calendar, pageSize int) *FeedService {
	return &FeedService{
		dailies:    repos.Dailies,
		logs:       repos.Logs,
		nudges:     repos.Nudges,
		events:     repos.Events,
		tasks:      repos.Tasks,
		memories:   repos.Memories,
		milestones: repos.Milestones,
		ideas:      repos.Ideas,
		photos:     photos,
		parser:     markdown.NewParser(),
		calendar:   calendar,
		pageSize:   pageSize,
	}
}

// Page returns the feed for the page of daily questions older than before
// (the newest page when before is empty). Other kinds are loaded for the
// date range the page spans.
func (s *FeedService) Page(ctx context.Context, roomID, before string, now time.Time) (*model.FeedPage, error) {
	if before != "" && !datekey.Valid(before) {
		return nil, fmt.Errorf("%w: before must be YYYY-MM-DD", ErrInvalidInput)
	}

	questions, err := s.dailies.Page(ctx, roomID, before, s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	page := &model.FeedPage{
		Items: []model.FeedItem{},
		Done:  len(questions) < s.pageSize,
	}

	toKey := s.calendar.Key(now)
	if before != "" {
		toKey, _ = datekey.AddDays(before, -1)
	}
	fromKey := earliestKey
	if !page.Done {
		fromKey = questions[len(questions)-1].DateKey
		page.NextBefore = fromKey
	}
	if len(questions) > 0 && questions[0].DateKey > toKey {
		toKey = questions[0].DateKey
	}

	var items []model.FeedItem
	for _, q := range questions {
		items = append(items, model.FeedItem{Type: model.FeedTypeQuestion, ID: q.ID, DateKey: q.DateKey, CreatedAt: q.CreatedAt, Data: q})
	}

	rest, err := s.rangeItems(ctx, roomID, fromKey, toKey)
	if err != nil {
		return nil, err
	}
	items = append(items, rest...)

	page.Items = MergeFeed(items)
	return page, nil
}

func (s *FeedService) rangeItems(ctx context.Context, roomID, fromKey, toKey string) ([]model.FeedItem, error) {
	from, _, err := s.calendar.Bounds(fromKey)
	if err != nil {
		return nil, err
	}
	_, to, err := s.calendar.Bounds(toKey)
	if err != nil {
		return nil, err
	}

	var items []model.FeedItem

	logs, err := s.logs.InRange(ctx, roomID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load journals: %w", err)
	}
	for _, log := range logs {
		html, err := s.parser.Parse([]byte(log.Body))
		if err != nil {
			slog.Warn("failed to render journal", "id", log.ID, "error", err)
		}
		items = append(items, model.FeedItem{
			Type: model.FeedTypeJournal, ID: log.ID, DateKey: log.DateKey, CreatedAt: log.CreatedAt,
			Data: &model.JournalGroup{UserID: log.UserID, DateKey: log.DateKey, Body: log.Body, HTML: string(html)},
		})
	}

	memories, err := s.memories.InRange(ctx, roomID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load memories: %w", err)
	}
	for _, m := range memories {
		item := &model.MemoryItem{Memory: m}
		if m.PhotoKey != nil && s.photos != nil {
			url, err := s.photos.PresignedURL(ctx, *m.PhotoKey)
			if err != nil {
				slog.Warn("failed to presign memory photo", "id", m.ID, "error", err)
			}
			item.PhotoURL = url
		}
		items = append(items, model.FeedItem{Type: model.FeedTypeMemory, ID: m.ID, DateKey: m.HappenedOn, CreatedAt: m.CreatedAt, Data: item})
	}

	milestones, err := s.milestones.InRange(ctx, roomID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	for _, m := range milestones {
		items = append(items, model.FeedItem{Type: model.FeedTypeMilestone, ID: m.ID, DateKey: m.HappenedOn, CreatedAt: m.CreatedAt, Data: m})
	}

	events, err := s.events.InRange(ctx, roomID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	for _, ev := range events {
		items = append(items, model.FeedItem{Type: model.FeedTypeEvent, ID: ev.ID, DateKey: s.calendar.Key(ev.StartsAt), CreatedAt: ev.CreatedAt, Data: ev})
	}

	tasks, err := s.tasks.InRange(ctx, roomID, fromKey, toKey, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	for _, task := range tasks {
		key := s.calendar.Key(task.CreatedAt)
		if task.DueDate != nil {
			key = *task.DueDate
		}
		items = append(items, model.FeedItem{Type: model.FeedTypeTask, ID: task.ID, DateKey: key, CreatedAt: task.CreatedAt, Data: task})
	}

	plans, err := s.ideas.PlansInRange(ctx, roomID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load date plans: %w", err)
	}
	for _, plan := range plans {
		items = append(items, model.FeedItem{Type: model.FeedTypeDatePlan, ID: plan.ID, DateKey: plan.PlannedFor, CreatedAt: plan.CreatedAt, Data: plan})
	}

	nudges, err := s.nudges.InRange(ctx, roomID, fromKey, toKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load nudges: %w", err)
	}
	for _, n := range nudges {
		items = append(items, model.FeedItem{Type: model.FeedTypeNudge, ID: n.ID, DateKey: n.DateKey, CreatedAt: n.CreatedAt, Data: n})
	}

	return items, nil
}

// MergeFeed orders items newest date-key first, then by type priority, then
// newest first within a type.
func MergeFeed(items []model.FeedItem) []model.FeedItem {
	slices.SortStableFunc(items, func(a, b model.FeedItem) int {
		if c := cmp.Compare(b.DateKey, a.DateKey); c != 0 {
			return c
		}
		if c := cmp.Compare(model.FeedPriority[a.Type], model.FeedPriority[b.Type]); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items
}
