package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/twoofus/server/internal/datekey"
	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
)

// ActivityService derives streaks and the activity heatmap from answers on
// every read. room_stats only keeps the latest result for other readers.
type ActivityService struct {
	dailies  repository.DailyQuestionRepository
	stats    repository.StatsRepository
	calendar *datekey.Calendar
	window   int
}

func NewActivityService(
	dailies repository.DailyQuestionRepository,
	stats repository.StatsRepository,
	calendar *datekey.Calendar,
	window int,
) *ActivityService {
	return &ActivityService{
		dailies:  dailies,
		stats:    stats,
		calendar: calendar,
		window:   window,
	}
}

func (s *ActivityService) Activity(ctx context.Context, roomID string, now time.Time) (*model.Activity, error) {
	today := s.calendar.Key(now)

	history, err := s.dailies.History(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer history: %w", err)
	}

	answerers := make(map[string]int, len(history))
	first := today
	for _, day := range history {
		answerers[day.DateKey] = day.Answerers
		if day.DateKey < first {
			first = day.DateKey
		}
	}

	keys, err := datekey.Range(first, today)
	if err != nil {
		return nil, err
	}
	statuses := make([]string, len(keys))
	total := 0
	for i, key := range keys {
		statuses[i] = dayStatus(answerers[key])
		if statuses[i] == model.DayStatusBoth {
			total++
		}
	}

	_, best := ComputeStreaks(statuses)

	// Today is still in progress; it only counts once both have answered.
	current := 0
	if n := len(statuses); n > 0 {
		if statuses[n-1] == model.DayStatusBoth {
			current, _ = ComputeStreaks(statuses)
		} else {
			current, _ = ComputeStreaks(statuses[:n-1])
		}
	}

	activity := &model.Activity{
		CurrentStreak: current,
		BestStreak:    best,
		TotalAnswered: total,
	}

	start, err := datekey.AddDays(today, -(s.window - 1))
	if err != nil {
		return nil, err
	}
	windowKeys, err := datekey.Range(start, today)
	if err != nil {
		return nil, err
	}
	for _, key := range windowKeys {
		activity.Days = append(activity.Days, model.ActivityDay{
			DateKey: key,
			Status:  dayStatus(answerers[key]),
		})
	}

	err = s.stats.Upsert(ctx, &model.RoomStats{
		RoomID:        roomID,
		CurrentStreak: activity.CurrentStreak,
		BestStreak:    activity.BestStreak,
		TotalAnswered: activity.TotalAnswered,
		ComputedAt:    now,
	})
	if err != nil {
		slog.Warn("failed to store room stats", "room_id", roomID, "error", err)
	}

	return activity, nil
}

func dayStatus(answerers int) string {
	switch {
	case answerers >= 2:
		return model.DayStatusBoth
	case answerers == 1:
		return model.DayStatusOne
	default:
		return model.DayStatusMissed
	}
}

// ComputeStreaks takes day statuses oldest first. current is the run of
// "both" days ending at the last entry; best is the longest such run.
func ComputeStreaks(statuses []string) (current, best int) {
	run := 0
	for _, status := range statuses {
		if status == model.DayStatusBoth {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return run, best
}
