package keypool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"gotube/internal/config"
	"gotube/internal/db"
	"gotube/internal/logger"
	"gotube/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupPool(t *testing.T) (*Pool, *gorm.DB) {
	service, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to create test db service: %v", err)
	}
	return NewPool(service, logger.Discard()), service.GetDB()
}

func TestGetNextPicksLeastUsed(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	gdb.Create(&model.Credential{Key: "busy", CurrentUsage: 4000})
	gdb.Create(&model.Credential{Key: "idle", CurrentUsage: 100})

	cred, err := pool.GetNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "idle", cred.Key)
}

func TestGetNextCeiling(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	// One unit below the ceiling is still selectable.
	gdb.Create(&model.Credential{Key: "edge", CurrentUsage: MaxQuota - 1})
	cred, err := pool.GetNext(ctx)
	assert.NoError(t, err)
	assert.Equal(t, MaxQuota-1, cred.CurrentUsage)

	// At the ceiling the pool is exhausted even though the nominal 10000
	// daily limit has headroom left.
	assert.NoError(t, pool.RecordUsage(ctx, cred, 1))
	_, err = pool.GetNext(ctx)
	assert.ErrorIs(t, err, ErrNoAvailableCredential)
}

func TestGetNextSkipsInactive(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	gdb.Create(&model.Credential{Key: "dead"})
	gdb.Model(&model.Credential{}).Where("key = ?", "dead").Update("active", false)

	_, err := pool.GetNext(ctx)
	assert.ErrorIs(t, err, ErrNoAvailableCredential)
}

func TestRecordUsage(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	cred := model.Credential{Key: "test-key", CurrentUsage: 50}
	gdb.Create(&cred)

	assert.NoError(t, pool.RecordUsage(ctx, &cred, 100))
	assert.Equal(t, 150, cred.CurrentUsage)

	var stored model.Credential
	gdb.First(&stored, cred.ID)
	assert.Equal(t, 150, stored.CurrentUsage)
}

func TestConcurrentSelectionBoundsOvershoot(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	// in-memory sqlite rejects concurrent writers, so serialize at the
	// connection while the callers still race in Go.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	const (
		callers = 16
		cost    = 1
	)
	start := MaxQuota - callers/2
	gdb.Create(&model.Credential{Key: "contested", CurrentUsage: start})

	// Every caller selects first and charges afterwards, the way the API
	// client does. Selections can race past the ceiling, but each caller saw
	// the credential below MaxQuota when it selected, so the final usage can
	// exceed the ceiling by at most callers*cost.
	var wg sync.WaitGroup
	var charged atomic.Int64
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cred, err := pool.GetNext(ctx)
			if errors.Is(err, ErrNoAvailableCredential) {
				return
			}
			if err != nil {
				t.Errorf("GetNext: %v", err)
				return
			}
			if err := pool.RecordUsage(ctx, cred, cost); err != nil {
				t.Errorf("RecordUsage: %v", err)
				return
			}
			charged.Add(1)
		}()
	}
	wg.Wait()

	var stored model.Credential
	gdb.Where("key = ?", "contested").First(&stored)

	// The atomic storage-side increment loses nothing: every successful
	// charge shows up exactly once.
	assert.Equal(t, start+int(charged.Load())*cost, stored.CurrentUsage)
	assert.LessOrEqual(t, stored.CurrentUsage, MaxQuota-1+callers*cost)
	// At least the gap below the ceiling was filled before callers started
	// seeing an exhausted pool.
	assert.GreaterOrEqual(t, int(charged.Load()), MaxQuota-start)
}

func TestMarkFailedDeactivates(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	cred := model.Credential{Key: "failing"}
	gdb.Create(&cred)
	cred.Active = true

	assert.NoError(t, pool.MarkFailed(ctx, &cred, "quotaExceeded"))
	assert.False(t, cred.Active)

	var stored model.Credential
	gdb.First(&stored, cred.ID)
	assert.False(t, stored.Active)
	assert.Equal(t, "quotaExceeded", stored.LastError)
}

func TestMarkFailedBenignReasonKeepsCredential(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	cred := model.Credential{Key: "healthy"}
	gdb.Create(&cred)
	cred.Active = true

	assert.NoError(t, pool.MarkFailed(ctx, &cred, "commentsDisabled"))
	assert.True(t, cred.Active)

	var stored model.Credential
	gdb.First(&stored, cred.ID)
	assert.True(t, stored.Active)
	assert.Empty(t, stored.LastError)
}

func TestSize(t *testing.T) {
	pool, gdb := setupPool(t)
	ctx := context.Background()

	gdb.Create(&model.Credential{Key: "key1"})
	gdb.Create(&model.Credential{Key: "key2"})
	gdb.Model(&model.Credential{}).Where("key = ?", "key2").Update("active", false)

	// Size counts every credential, active or not, because it bounds the
	// rotation loop rather than describing capacity.
	size, err := pool.Size(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, size)
}
