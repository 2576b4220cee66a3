package scheduler

import (
	"context"
	"log/slog"

	"gotube/internal/db"
	"gotube/internal/quota"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the daily maintenance job: credential usage counters go
// back to zero and the quota ledger opens the new day's bucket.
type Scheduler struct {
	db     db.Service
	ledger *quota.Ledger
	c      *cron.Cron
	logger *slog.Logger
}

func NewScheduler(database db.Service, ledger *quota.Ledger, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     database,
		ledger: ledger,
		c:      cron.New(),
		logger: logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start() error {
	_, err := s.c.AddFunc("@daily", s.runDailyReset)
	if err != nil {
		return err
	}
	s.c.Start()
	s.logger.Info("Scheduler started, daily quota reset registered")
	return nil
}

func (s *Scheduler) runDailyReset() {
	s.logger.Info("Running daily job: resetting credential usage counts")
	if err := s.db.ResetAllCredentialUsage(context.Background()); err != nil {
		s.logger.Error("Failed to reset credential usage", "error", err)
	}
	// Touching the ledger materializes today's row so period queries never
	// see a gap for a day with zero traffic.
	if _, err := s.ledger.TodayUsage(context.Background()); err != nil {
		s.logger.Error("Failed to open today's quota bucket", "error", err)
	}
}

func (s *Scheduler) Stop() {
	s.c.Stop()
}
