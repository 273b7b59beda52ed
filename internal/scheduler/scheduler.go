package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TrendSentry/internal/orchestrator"
)

// Scheduler triggers trading cycles at a fixed cadence. Overlap protection
// lives in the orchestrator; the scheduler just fires.
type Scheduler struct {
	cron *cron.Cron
	orch *orchestrator.Orchestrator
	ctx  context.Context
}

// NewScheduler creates a Scheduler bound to the given context.
func NewScheduler(ctx context.Context, orch *orchestrator.Orchestrator) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		orch: orch,
		ctx:  ctx,
	}
}

// Register adds the cycle cron entry.
func (s *Scheduler) Register(cycleCron string) error {
	if _, err := s.cron.AddFunc(cycleCron, s.cycleTask); err != nil {
		return fmt.Errorf("register cycle task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes a cycle immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	result := s.orch.RunCycle(s.ctx, "manual")
	log.Info().
		Bool("success", result.Success).
		Str("action", string(result.Action)).
		Msg("manual cycle completed")
}

func (s *Scheduler) cycleTask() {
	result := s.orch.RunCycle(s.ctx, "scheduled")
	if !result.Success {
		log.Warn().
			Str("action", string(result.Action)).
			Str("error", string(result.Error)).
			Msg("scheduled cycle did not complete cleanly")
	}
}
