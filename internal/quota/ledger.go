// Package quota keeps the day-bucketed ledger of consumed upstream quota.
// Every executor attempt lands here, success or failure, because upstream
// bills the cost either way.
package quota

import (
	"context"
	"log/slog"
	"time"

	"gotube/internal/db"
	"gotube/internal/model"
)

// Ledger accumulates quota cost per calendar day.
type Ledger struct {
	db     db.Service
	logger *slog.Logger
}

// NewLedger creates a ledger backed by the given storage service.
func NewLedger(dbService db.Service, logger *slog.Logger) *Ledger {
	return &Ledger{
		db:     dbService,
		logger: logger.With("component", "quota"),
	}
}

// AddUsage adds cost to today's row, creating it when missing. Zero cost only
// materializes the row.
func (l *Ledger) AddUsage(ctx context.Context, cost int) error {
	_, err := l.db.AddQuotaUsage(ctx, cost)
	return err
}

// TodayUsage returns today's ledger row. Touching the row with a zero charge
// first guarantees it exists before the read.
func (l *Ledger) TodayUsage(ctx context.Context) (model.QuotaUsage, error) {
	return l.db.AddQuotaUsage(ctx, 0)
}

// UsageForRange returns the ledger rows in the inclusive range, oldest first.
func (l *Ledger) UsageForRange(ctx context.Context, start, end time.Time) ([]model.QuotaUsage, error) {
	return l.db.QuotaUsageBetween(ctx, start, end)
}

// Statistic summarizes the pool for reporting: total active daily budget and
// quota burned today.
type Statistic struct {
	Total int64 `json:"total"`
	Today int   `json:"today"`
}

// Statistic reports the pool-wide quota volume against today's consumption.
func (l *Ledger) Statistic(ctx context.Context) (Statistic, error) {
	total, err := l.db.ActiveQuotaVolume(ctx)
	if err != nil {
		return Statistic{}, err
	}
	today, err := l.TodayUsage(ctx)
	if err != nil {
		return Statistic{}, err
	}
	return Statistic{Total: total, Today: today.CurrentUsage}, nil
}
