package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler refreshes a store on a cron schedule. Overlapping runs are
// skipped by the store's refresh guard.
type Scheduler struct {
	cron    *cron.Cron
	store   *Store
	timeout time.Duration
}

// NewScheduler registers the refresh job; schedule is a cron expression or
// a descriptor such as "@every 24h".
func NewScheduler(store *Store, schedule string, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), store: store, timeout: timeout}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	slog.Info("scheduler.start", "entries", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler.stop")
}

func (s *Scheduler) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	err := s.store.Refresh(ctx)
	switch {
	case errors.Is(err, ErrRefreshRunning):
		slog.Info("scheduler.skip", "reason", "previous refresh still running")
	case err != nil:
		slog.Warn("scheduler.refresh.failed", "err", err)
	}
}
