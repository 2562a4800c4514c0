// Package jobs names the scheduled jobs and runs them by name, so the
// scheduler, webhooks, lambdas and CLI share one entry point.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twoofus/server/internal/service"
)

const (
	AssignDailyQuestion  = "assign-daily-question"
	ScanReminders        = "scan-reminders"
	AnniversaryReminders = "anniversary-reminders"
)

var ErrUnknownJob = errors.New("unknown job")

// Names lists every job in a stable order.
func Names() []string {
	return []string{AssignDailyQuestion, ScanReminders, AnniversaryReminders}
}

type Runner struct {
	daily       *service.DailyQuestionService
	reminders   *service.ReminderService
	anniversary *service.AnniversaryService
	now         func() time.Time
}

func NewRunner(daily *service.DailyQuestionService, reminders *service.ReminderService, anniversary *service.AnniversaryService) *Runner {
	return &Runner{
		daily:       daily,
		reminders:   reminders,
		anniversary: anniversary,
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes one job and returns its summary.
func (r *Runner) Run(ctx context.Context, name string) (any, error) {
	start := time.Now()
	now := r.now()

	var summary any
	var err error
	switch name {
	case AssignDailyQuestion:
		summary, err = r.daily.AssignAll(ctx, now)
	case ScanReminders:
		summary, err = r.reminders.Scan(ctx, now)
	case AnniversaryReminders:
		summary, err = r.anniversary.Run(ctx, now)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}

	if err != nil {
		slog.Error("job failed", "job", name, "duration", time.Since(start), "error", err)
		return nil, err
	}
	slog.Info("job finished", "job", name, "duration", time.Since(start))
	return summary, nil
}
