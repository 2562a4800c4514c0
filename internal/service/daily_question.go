package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
)

var ErrEmptyQuestionPool = errors.New("question pool is empty")

type DailyQuestionService struct {
	rooms     repository.RoomRepository
	questions repository.QuestionRepository
	dailies   repository.DailyQuestionRepository
	calendar  *datekey.Calendar
	window    int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDailyQuestionService(
	rooms repository.RoomRepository,
	questions repository.QuestionRepository,
	dailies repository.DailyQuestionRepository,
	calendar *datekey.Calendar,
	window int,
) *DailyQuestionService {
	now := uint64(time.Now().UnixNano())
	return &DailyQuestionService{
		rooms:     rooms,
		questions: questions,
		dailies:   dailies,
		calendar:  calendar,
		window:    window,
		rng:       rand.New(rand.NewPCG(now, now>>1)),
	}
}

// WithRand replaces the random source, for deterministic tests.
func (s *DailyQuestionService) WithRand(rng *rand.Rand) *DailyQuestionService {
	s.rng = rng
	return s
}

// AssignAll gives every room a question for the business day containing now.
// Rooms that already have one are skipped; a failure for one room is logged
// and counted without stopping the others.
func (s *DailyQuestionService) AssignAll(ctx context.Context, now time.Time) (model.AssignSummary, error) {
	key := s.calendar.Key(now)
	summary := model.AssignSummary{DateKey: key}

	pool, err := s.pool(ctx)
	if err != nil {
		return summary, err
	}

	rooms, err := s.rooms.All(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list rooms: %w", err)
	}
	summary.Rooms = len(rooms)

	for _, room := range rooms {
		created, err := s.ensure(ctx, room.ID, key, pool)
		if err != nil {
			slog.Error("failed to assign daily question", "room_id", room.ID, "date_key", key, "error", err)
			summary.Failed++
			continue
		}
		if created {
			summary.Added++
		} else {
			summary.Skipped++
		}
	}

	slog.Info("daily questions assigned",
		"date_key", key,
		"rooms", summary.Rooms,
		"added", summary.Added,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// Today returns the room's question for the current business day, assigning
// one when the scheduled job has not run yet.
func (s *DailyQuestionService) Today(ctx context.Context, roomID string, now time.Time) (*model.DailyQuestionView, error) {
	key := s.calendar.Key(now)

	dq, err := s.dailies.ByRoomAndDate(ctx, roomID, key)
	if err == nil {
		return dq, nil
	}
	if !errors.Is(err, repository.ErrDailyQuestionNotFound) {
		return nil, err
	}

	pool, err := s.pool(ctx)
	if err != nil {
		return nil, err
	}

	created, err := s.ensure(ctx, roomID, key, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to assign daily question: %w", err)
	}
	if created {
		slog.Info("daily question assigned on read", "room_id", roomID, "date_key", key)
	}

	// Re-read: when another writer won the insert, its row is the answer.
	return s.dailies.ByRoomAndDate(ctx, roomID, key)
}

// ensure inserts a question for (roomID, key) unless one exists and reports
// whether this call created it.
func (s *DailyQuestionService) ensure(ctx context.Context, roomID, key string, pool []string) (bool, error) {
	_, err := s.dailies.ByRoomAndDate(ctx, roomID, key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrDailyQuestionNotFound) {
		return false, err
	}

	recent, err := s.dailies.RecentQuestionIDs(ctx, roomID, s.window)
	if err != nil {
		return false, fmt.Errorf("failed to load recent questions: %w", err)
	}

	return s.dailies.Insert(ctx, &model.DailyQuestion{
		RoomID:     roomID,
		DateKey:    key,
		QuestionID: s.pick(pool, recent),
	})
}

func (s *DailyQuestionService) pool(ctx context.Context) ([]string, error) {
	pool, err := s.questions.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load question pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrEmptyQuestionPool
	}
	return pool, nil
}

// pick chooses uniformly among pool ids not in recent, or among the whole
// pool when every id was used recently.
func (s *DailyQuestionService) pick(pool, recent []string) string {
	used := make(map[string]bool, len(recent))
	for _, id := range recent {
		used[id] = true
	}

	eligible := make([]string, 0, len(pool))
	for _, id := range pool {
		if !used[id] {
			eligible = append(eligible, id)
		}
	}
	if len(eligible) == 0 {
		eligible = pool
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return eligible[s.rng.IntN(len(eligible))]
}
