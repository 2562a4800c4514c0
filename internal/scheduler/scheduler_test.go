package scheduler

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/twoofus/server/internal/jobs"
)

type countingRunner struct {
	mu   sync.Mutex
	runs map[string]int
}

func (r *countingRunner) Run(ctx context.Context, name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[name]++
	return nil, nil
}

func (r *countingRunner) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[name]
}

func TestSchedulerRegistersJobs(t *testing.T) {
	runner := &countingRunner{runs: map[string]int{}}
	s, err := New(runner, Options{
		AssignCron:       "0 6 * * *",
		ReminderInterval: 20 * time.Millisecond,
		AnniversaryCron:  "0 9 * * *",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Shutdown()

	names := s.JobNames()
	slices.Sort(names)
	want := jobs.Names()
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Errorf("jobs = %v, want %v", names, want)
	}

	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for runner.count(jobs.ScanReminders) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("reminder scan never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if runner.count(jobs.AssignDailyQuestion) != 0 {
		t.Error("daily cron job ran outside its schedule")
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	_, err := New(&countingRunner{runs: map[string]int{}}, Options{
		AssignCron:       "every morning",
		ReminderInterval: time.Minute,
		AnniversaryCron:  "0 9 * * *",
	})
	if err == nil {
		t.Fatal("invalid cron expression accepted")
	}
}

type slowRunner struct {
	mu        sync.Mutex
	active    int
	maxActive int
	runs      int
}

func (r *slowRunner) Run(ctx context.Context, name string) (any, error) {
	if name != jobs.ScanReminders {
		return nil, nil
	}
	r.mu.Lock()
	r.active++
	r.runs++
	r.maxActive = max(r.maxActive, r.active)
	r.mu.Unlock()

	time.Sleep(100 * time.Millisecond)

	r.mu.Lock()
	r.active--
	r.mu.Unlock()
	return nil, nil
}

func TestSchedulerSkipsOverlappingRuns(t *testing.T) {
	runner := &slowRunner{}
	s, err := New(runner, Options{
		AssignCron:       "0 6 * * *",
		ReminderInterval: 10 * time.Millisecond,
		AnniversaryCron:  "0 9 * * *",
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Start()
	time.Sleep(350 * time.Millisecond)
	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if runner.runs == 0 {
		t.Fatal("reminder scan never ran")
	}
	if runner.maxActive != 1 {
		t.Errorf("max concurrent runs = %d, want 1", runner.maxActive)
	}
	// A 10ms interval over 350ms would queue dozens of runs; skipped ticks keep
	// it to a handful.
	if runner.runs > 5 {
		t.Errorf("runs = %d, overlapping ticks were queued", runner.runs)
	}
}
