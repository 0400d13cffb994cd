// Package scheduler triggers periodic pipeline runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/pipeline"
)

// Runner is the unit of work the scheduler fires.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
}

// Scheduler wraps robfig/cron and manages the periodic run loop.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
	logger *zap.Logger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(runner Runner, intervalHours int, logger *zap.Logger) *Scheduler {
	if intervalHours < 1 {
		intervalHours = 1
	}
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. One run fires
// immediately so results are available without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("registering cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.runOnce(ctx)

	return nil
}

// Stop shuts the scheduler down. Already running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	report, err := s.runner.Run(ctx)
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		s.logger.Warn("skipping scheduled run", zap.Error(err))
		return
	}
	if err != nil {
		s.logger.Error("scheduled run failed", zap.Error(err))
		return
	}

	s.logger.Info("scheduled run finished",
		zap.Int("saved", report.Saved),
		zap.Int("high_priority", report.HighPriority),
	)
}
