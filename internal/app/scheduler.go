package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nestvault/nestvault/internal/schedule"
)

// scheduler drives backup cycles on a cron cadence. It is a single
// cooperative loop: cycles run synchronously, and the next fire time is
// recomputed from the wall clock after each run finishes, so an overrunning
// cycle shifts the schedule instead of accumulating drift or a backlog.
type scheduler struct {
	spec schedule.CronSpec
	run  func(ctx context.Context) (bool, error)
	now  func() time.Time
	log  *log.Logger
}

// RunScheduler blocks until the context is canceled. The first backup runs
// immediately; every restart starts from a clean slate since no schedule
// state is persisted.
func (a *App) RunScheduler(ctx context.Context) error {
	spec, err := schedule.ParseCronSpec(a.cfg.Schedule)
	if err != nil {
		return err
	}

	s := &scheduler{
		spec: spec,
		run:  a.RunCycle,
		now:  time.Now,
		log:  a.log.WithPrefix("scheduler"),
	}

	s.log.Info("scheduler started",
		"schedule", a.cfg.Schedule,
		"retention_days", a.cfg.RetentionDays,
	)
	return s.loop(ctx)
}

func (s *scheduler) loop(ctx context.Context) error {
	s.log.Info("running initial backup")
	s.tick(ctx)

	for {
		next := s.spec.Next(s.now().UTC())
		s.log.Info("next backup scheduled", "at", next.Format(time.RFC3339))

		if err := s.sleepUntil(ctx, next); err != nil {
			s.log.Info("shutdown requested")
			return nil
		}
		s.tick(ctx)
	}
}

// tick attempts one cycle. A tick that finds an operation still in flight is
// skipped outright; missed ticks are never queued or caught up.
func (s *scheduler) tick(ctx context.Context) {
	started, err := s.run(ctx)
	if !started {
		s.log.Warn("previous operation still in progress, skipping this tick")
		return
	}
	if err != nil && ctx.Err() == nil {
		s.log.Error("backup cycle failed", "err", err)
	}
}

func (s *scheduler) sleepUntil(ctx context.Context, at time.Time) error {
	d := at.Sub(s.now().UTC())
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
