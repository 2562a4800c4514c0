// Package scheduler runs the jobs in-process on a cron schedule, for
// deployments without an external cron.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/twoofus/server/internal/jobs"
)

// Runner executes a job by name.
type Runner interface {
	Run(ctx context.Context, name string) (any, error)
}

type Options struct {
	Location         *time.Location
	AssignCron       string
	ReminderInterval time.Duration
	AnniversaryCron  string
}

type Scheduler struct {
	s      gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New registers the three jobs. Each runs in singleton mode: a run that comes
// due while the previous one is still going is skipped, not queued.
func New(runner Runner, opts Options) (*Scheduler, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sch := &Scheduler{s: s, ctx: ctx, cancel: cancel}

	definitions := []struct {
		name string
		def  gocron.JobDefinition
	}{
		{jobs.AssignDailyQuestion, gocron.CronJob(opts.AssignCron, false)},
		{jobs.ScanReminders, gocron.DurationJob(opts.ReminderInterval)},
		{jobs.AnniversaryReminders, gocron.CronJob(opts.AnniversaryCron, false)},
	}

	for _, d := range definitions {
		name := d.name
		_, err := s.NewJob(
			d.def,
			gocron.NewTask(func() {
				if _, err := runner.Run(sch.ctx, name); err != nil {
					slog.Error("scheduled job failed", "job", name, "error", err)
				}
			}),
			gocron.WithName(name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			_ = s.Shutdown()
			return nil, fmt.Errorf("failed to schedule %s: %w", name, err)
		}
	}

	return sch, nil
}

func (s *Scheduler) Start() {
	s.s.Start()
	slog.Info("scheduler started", "jobs", len(s.s.Jobs()))
}

// JobNames returns the names of the registered jobs.
func (s *Scheduler) JobNames() []string {
	var names []string
	for _, j := range s.s.Jobs() {
		names = append(names, j.Name())
	}
	return names
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.s.Shutdown()
}
