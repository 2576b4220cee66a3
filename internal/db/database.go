package db

import (
	"context"
	"fmt"
	"time"

	"gotube/internal/config"
	"gotube/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Service is the storage surface the gateway core depends on. It covers the
// credential pool, proxy bindings, the filtering directories and the quota
// ledger; administrative CRUD for these tables lives outside this module.
type Service interface {
	// Credentials.
	NextCredential(ctx context.Context, ceiling int) (*model.Credential, error)
	IncrementCredentialUsage(ctx context.Context, id uint, cost int) error
	DeactivateCredential(ctx context.Context, id uint, reason string) error
	ResetAllCredentialUsage(ctx context.Context) error
	CountCredentials(ctx context.Context) (int64, error)
	ActiveQuotaVolume(ctx context.Context) (int64, error)

	// Proxies.
	LoadProxies(ctx context.Context) ([]model.Proxy, error)
	ProxyBindingCounts(ctx context.Context) (map[uint]int, error)

	// Filtering directories.
	VideoBlacklist(ctx context.Context) ([]string, error)
	VideoInBlacklist(ctx context.Context, videoID string) (bool, error)
	ChannelBlacklist(ctx context.Context) ([]string, error)
	ChannelInBlacklist(ctx context.Context, channelID string) (bool, error)
	StopPhrases(ctx context.Context) ([]string, error)

	// Quota ledger.
	AddQuotaUsage(ctx context.Context, cost int) (model.QuotaUsage, error)
	QuotaUsageBetween(ctx context.Context, start, end time.Time) ([]model.QuotaUsage, error)

	GetDB() *gorm.DB
}

type service struct {
	db *gorm.DB
}

// NewService opens the database described by cfg and migrates the schema.
func NewService(cfg config.DatabaseConfig) (Service, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&model.Credential{},
		&model.Proxy{},
		&model.VideoBlacklistEntry{},
		&model.ChannelBlacklistEntry{},
		&model.StopPhrase{},
		&model.QuotaUsage{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	return &service{db: db}, nil
}

// GetDB exposes the underlying gorm handle, mainly for tests and migrations.
func (s *service) GetDB() *gorm.DB {
	return s.db
}
