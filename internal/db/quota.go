package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gotube/internal/model"

	"gorm.io/gorm"
)

// Today returns the current calendar day truncated to midnight UTC, the
// bucket key for quota ledger rows.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// AddQuotaUsage upserts today's ledger row, adding cost to it. A zero cost
// only materializes the row. The increment is an atomic column update so
// concurrent attempts never lose a charge.
func (s *service) AddQuotaUsage(ctx context.Context, cost int) (model.QuotaUsage, error) {
	day := Today()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.QuotaUsage
		err := tx.Where("date = ?", day).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = model.QuotaUsage{Date: day, CurrentUsage: 0}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if cost == 0 {
			return nil
		}
		return tx.Model(&model.QuotaUsage{}).
			Where("date = ?", day).
			UpdateColumn("current_usage", gorm.Expr("current_usage + ?", cost)).Error
	})
	if err != nil {
		return model.QuotaUsage{}, fmt.Errorf("failed to add quota usage: %w", err)
	}

	var row model.QuotaUsage
	if err := s.db.WithContext(ctx).Where("date = ?", day).First(&row).Error; err != nil {
		return model.QuotaUsage{}, fmt.Errorf("failed to read back quota usage: %w", err)
	}
	return row, nil
}

// QuotaUsageBetween returns ledger rows for the inclusive date range, oldest
// first.
func (s *service) QuotaUsageBetween(ctx context.Context, start, end time.Time) ([]model.QuotaUsage, error) {
	var rows []model.QuotaUsage
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load quota usage range: %w", err)
	}
	return rows, nil
}
