package db

import (
	"context"
	"fmt"

	"gotube/internal/model"

	"gorm.io/gorm"
)

// NextCredential returns the active credential with the lowest usage that is
// still strictly below the ceiling, with its bound proxies preloaded. It is a
// pure read; callers account usage separately.
func (s *service) NextCredential(ctx context.Context, ceiling int) (*model.Credential, error) {
	var cred model.Credential
	err := s.db.WithContext(ctx).
		Where("active = ? AND current_usage < ?", true, ceiling).
		Order("current_usage asc").
		Preload("Proxies").
		First(&cred).Error
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// IncrementCredentialUsage adds cost to a credential's usage as an atomic
// column update. Concurrent callers holding the same selection may each land
// their increment; none of them is lost.
func (s *service) IncrementCredentialUsage(ctx context.Context, id uint, cost int) error {
	result := s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("id = ?", id).
		UpdateColumn("current_usage", gorm.Expr("current_usage + ?", cost))
	if result.Error != nil {
		return fmt.Errorf("failed to increment usage for credential %d: %w", id, result.Error)
	}
	return nil
}

// DeactivateCredential takes a credential out of rotation and records why.
func (s *service) DeactivateCredential(ctx context.Context, id uint, reason string) error {
	result := s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"active": false, "last_error": reason})
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate credential %d: %w", id, result.Error)
	}
	return nil
}

// ResetAllCredentialUsage zeroes every credential's usage counter. Called by
// the daily reset job.
func (s *service) ResetAllCredentialUsage(ctx context.Context) error {
	result := s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("current_usage > 0").
		Update("current_usage", 0)
	if result.Error != nil {
		return fmt.Errorf("failed to reset credential usage: %w", result.Error)
	}
	return nil
}

func (s *service) CountCredentials(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Credential{}).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count credentials: %w", err)
	}
	return count, nil
}

// ActiveQuotaVolume sums the daily limits of all active credentials.
func (s *service) ActiveQuotaVolume(ctx context.Context) (int64, error) {
	var volume int64
	err := s.db.WithContext(ctx).Model(&model.Credential{}).
		Where("active = ?", true).
		Select("COALESCE(SUM(daily_limit), 0)").
		Scan(&volume).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum active quota volume: %w", err)
	}
	return volume, nil
}

func (s *service) LoadProxies(ctx context.Context) ([]model.Proxy, error) {
	var proxies []model.Proxy
	err := s.db.WithContext(ctx).Find(&proxies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load proxies: %w", err)
	}
	return proxies, nil
}

// ProxyBindingCounts returns, per proxy ID, the number of credentials
// currently bound to it.
func (s *service) ProxyBindingCounts(ctx context.Context) (map[uint]int, error) {
	type bindingCount struct {
		ProxyID uint
		N       int
	}
	var rows []bindingCount
	err := s.db.WithContext(ctx).Table("credential_proxies").
		Select("proxy_id, COUNT(*) AS n").
		Group("proxy_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count proxy bindings: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.ProxyID] = row.N
	}
	return counts, nil
}
