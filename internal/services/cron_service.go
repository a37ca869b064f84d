package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// AttemptPruner removes login attempts that no longer count toward throttling.
type AttemptPruner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// CronService runs periodic housekeeping jobs
type CronService struct {
	cron    *cron.Cron
	pruner  AttemptPruner
	logger  *logrus.Logger
	timeout time.Duration
}

// NewCronService creates a new CronService
func NewCronService(pruner AttemptPruner, logger *logrus.Logger) *CronService {
	return &CronService{
		cron:    cron.New(cron.WithSeconds()),
		pruner:  pruner,
		logger:  logger,
		timeout: time.Minute,
	}
}

// Start schedules all jobs and starts the scheduler
func (s *CronService) Start() error {
	// "0 0 * * * *" = top of every hour
	if _, err := s.cron.AddFunc("0 0 * * * *", s.pruneLoginAttemptsJob); err != nil {
		return fmt.Errorf("failed to schedule login attempt cleanup: %w", err)
	}

	s.cron.Start()
	s.logger.WithField("jobs", len(s.cron.Entries())).Info("Cron service started")
	return nil
}

// Stop waits for running jobs to finish
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Cron service stopped")
}

func (s *CronService) pruneLoginAttemptsJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	removed, err := s.pruner.CleanupExpired(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune login attempts")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"removed":     removed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Pruned expired login attempts")
}
