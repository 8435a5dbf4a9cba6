package infra

import (
	"context"

	"github.com/robfig/cron/v3"

	"papertrade/internal/service"
	"papertrade/pkg/logger"
)

// Scheduler manages the limit-order fill poller. The fill trigger policy
// is configuration, not engine semantics: an empty cron spec leaves
// pending orders untouched until some other process transitions them.
type Scheduler struct {
	cron        *cron.Cron
	fillService *service.FillService
	cronSpec    string
}

// NewScheduler creates a new scheduler. cronSpec uses the standard
// five-field cron format; empty disables polling.
func NewScheduler(fillService *service.FillService, cronSpec string) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		fillService: fillService,
		cronSpec:    cronSpec,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	if s.cronSpec == "" {
		logger.Infof("Fill poller disabled (no FILL_POLL_CRON configured)")
		return nil
	}

	_, err := s.cron.AddFunc(s.cronSpec, func() {
		ctx := context.Background()
		if err := s.fillService.CheckOpenOrders(ctx); err != nil {
			logger.Errorf("Fill poller run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Infof("[OK] Fill poller started (%s)", s.cronSpec)
	return nil
}

// RunNow triggers one fill check outside the schedule.
func (s *Scheduler) RunNow() error {
	return s.fillService.CheckOpenOrders(context.Background())
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.Infof("[OK] Scheduler stopped")
}
