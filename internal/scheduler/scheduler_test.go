package scheduler

import (
	"testing"

	"gotube/internal/config"
	"gotube/internal/db"
	"gotube/internal/logger"
	"gotube/internal/model"
	"gotube/internal/quota"

	"github.com/stretchr/testify/assert"
)

func TestDailyReset(t *testing.T) {
	service, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to create test db service: %v", err)
	}
	gdb := service.GetDB()
	gdb.Create(&model.Credential{Key: "key1", CurrentUsage: 9000})
	gdb.Create(&model.Credential{Key: "key2", CurrentUsage: 150})

	log := logger.Discard()
	sched := NewScheduler(service, quota.NewLedger(service, log), log)
	assert.NoError(t, sched.Start())
	defer sched.Stop()

	// The cron trigger itself cannot be awaited in a test; run the job
	// body directly.
	sched.runDailyReset()

	var creds []model.Credential
	gdb.Find(&creds)
	for _, cred := range creds {
		assert.Equal(t, 0, cred.CurrentUsage)
	}

	// Today's ledger row exists after the reset touched it.
	var count int64
	gdb.Model(&model.QuotaUsage{}).Where("date = ?", db.Today()).Count(&count)
	assert.Equal(t, int64(1), count)
}
