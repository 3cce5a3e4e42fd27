// Package schedule runs recurring jobs on robfig/cron.
//
//	s := schedule.New()
//	_ = s.Add("model:retrain", "@every 1h", retrain)
//	s.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/shashiranjanraj/propelyu/pkg/logger"
)

// Task is the function signature for a scheduled job. ctx is cancelled when
// the scheduler stops.
type Task func(ctx context.Context)

type entry struct {
	id   string
	spec string
	eid  cron.EntryID
}

// Scheduler wraps a cron instance. Runs of the same job never overlap and a
// panicking job is logged and recovered.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	entries []entry
	ctx     context.Context
	cancel  context.CancelFunc
}

func New() *Scheduler {
	l := cronLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers task under id. spec is a 5-field cron expression or a
// descriptor such as "@hourly" or "@every 30m".
func (s *Scheduler) Add(id, spec string, task Task) error {
	eid, err := s.cron.AddFunc(spec, func() {
		logger.Info("schedule: running task", "id", id)
		task(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule: %s: invalid spec %q: %w", id, spec, err)
	}
	s.mu.Lock()
	s.entries = append(s.entries, entry{id: id, spec: spec, eid: eid})
	s.mu.Unlock()
	return nil
}

// Start runs the scheduler in the background until ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	logger.Info("schedule: scheduler started", "jobs", len(s.List()))
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.ctx.Done():
		}
	}()
}

// Stop halts scheduling and cancels running tasks' context. The returned
// context is done once running jobs have finished.
func (s *Scheduler) Stop() context.Context {
	done := s.cron.Stop()
	s.cancel()
	logger.Info("schedule: scheduler stopped")
	return done
}

// List returns "id  [spec]" lines sorted by id, for CLI display.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.spec))
	}
	sort.Strings(out)
	return out
}

// cronLogger adapts cron.Logger to slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("schedule: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("schedule: "+msg, append(keysAndValues, "error", err)...)
}
