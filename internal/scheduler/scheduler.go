// Package scheduler runs the pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"curator/internal/logger"
)

// Scheduler triggers a job on a cron expression and blocks until the
// context is cancelled.
type Scheduler struct {
	cron *cron.Cron
	spec string
	job  func(context.Context)
}

// New creates a scheduler for the given cron spec. The spec is validated
// up front so a bad schedule fails at startup, not at first trigger.
func New(spec string, job func(context.Context)) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	return &Scheduler{
		cron: cron.New(),
		spec: spec,
		job:  job,
	}, nil
}

// Run starts the schedule and blocks until ctx is done. A trigger that
// fires while the previous run is still going is skipped rather than
// stacked.
func (s *Scheduler) Run(ctx context.Context) error {
	running := make(chan struct{}, 1)

	_, err := s.cron.AddFunc(s.spec, func() {
		select {
		case running <- struct{}{}:
		default:
			logger.Warn("Previous run still in progress, skipping trigger", "schedule", s.spec)
			return
		}
		defer func() { <-running }()

		s.job(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	logger.Info("Scheduler started", "schedule", s.spec)
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	logger.Info("Scheduler stopped")

	return ctx.Err()
}
