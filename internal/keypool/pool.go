// Package keypool selects and accounts YouTube API credentials. Selection is
// load-leveling: the least-used active credential below the quota ceiling
// wins. Usage accounting is delegated to atomic increments at the storage
// layer, so concurrent requests holding the same selection can overshoot the
// ceiling by at most the number of requests in flight.
package keypool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gotube/internal/db"
	"gotube/internal/model"

	"gorm.io/gorm"
)

// MaxQuota is the selection ceiling. It sits below the usual 10000-unit daily
// budget to reserve headroom for in-flight requests.
const MaxQuota = 9500

// ErrNoAvailableCredential is returned when no active credential remains
// below the ceiling.
var ErrNoAvailableCredential = errors.New("no available credential in pool")

// Pool hands out credentials and tracks their usage and failure state.
type Pool struct {
	db     db.Service
	logger *slog.Logger
}

// NewPool creates a credential pool backed by the given storage service.
func NewPool(dbService db.Service, logger *slog.Logger) *Pool {
	return &Pool{
		db:     dbService,
		logger: logger.With("component", "keypool"),
	}
}

// GetNext returns the active credential with the lowest usage strictly below
// the ceiling. It is a pure read; call RecordUsage once the cost is known.
func (p *Pool) GetNext(ctx context.Context) (*model.Credential, error) {
	cred, err := p.db.NextCredential(ctx, MaxQuota)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAvailableCredential
		}
		return nil, fmt.Errorf("failed to select credential: %w", err)
	}
	return cred, nil
}

// RecordUsage charges cost against the credential. The increment happens
// atomically in storage, never as read-modify-write.
func (p *Pool) RecordUsage(ctx context.Context, cred *model.Credential, cost int) error {
	if err := p.db.IncrementCredentialUsage(ctx, cred.ID, cost); err != nil {
		return err
	}
	cred.CurrentUsage += cost
	return nil
}

// MarkFailed deactivates the credential and records the upstream reason.
// Benign, resource-specific reasons (a video with comments turned off) leave
// the credential in rotation.
func (p *Pool) MarkFailed(ctx context.Context, cred *model.Credential, reason string) error {
	if IsBenignReason(reason) {
		p.logger.Debug("Ignoring benign failure reason", "credential_id", cred.ID, "reason", reason)
		return nil
	}

	p.logger.Warn("Deactivating credential", "credential_id", cred.ID, "reason", reason)
	if err := p.db.DeactivateCredential(ctx, cred.ID, reason); err != nil {
		return err
	}
	cred.Active = false
	cred.LastError = reason
	return nil
}

// Size returns the total number of credentials, used to bound rotation loops.
func (p *Pool) Size(ctx context.Context) (int, error) {
	count, err := p.db.CountCredentials(ctx)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
