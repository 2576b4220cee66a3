package keypool

import (
	"context"
	"testing"

	"gotube/internal/config"
	"gotube/internal/db"
	"gotube/internal/logger"
	"gotube/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func setupAssigner(t *testing.T) (*Assigner, *gorm.DB) {
	service, err := db.NewService(config.DatabaseConfig{Type: "sqlite", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to create test db service: %v", err)
	}
	return NewAssigner(service, logger.Discard()), service.GetDB()
}

func TestAssignFirstFit(t *testing.T) {
	assigner, gdb := setupAssigner(t)
	ctx := context.Background()

	first := model.Proxy{Host: "10.0.0.1", Port: 3128}
	second := model.Proxy{Host: "10.0.0.2", Port: 3128}
	gdb.Create(&first)
	gdb.Create(&second)

	assigned, err := assigner.Assign(ctx, 3, 2)
	assert.NoError(t, err)
	assert.Len(t, assigned, 3)

	// First-fit fills the first proxy up to the limit before moving on.
	assert.Equal(t, first.ID, assigned[0].ID)
	assert.Equal(t, first.ID, assigned[1].ID)
	assert.Equal(t, second.ID, assigned[2].ID)
}

func TestAssignRespectsExistingBindings(t *testing.T) {
	assigner, gdb := setupAssigner(t)
	ctx := context.Background()

	proxy := model.Proxy{Host: "10.0.0.1", Port: 3128}
	gdb.Create(&proxy)
	gdb.Create(&model.Credential{Key: "bound", Proxies: []model.Proxy{proxy}})

	// The proxy already hosts one credential, so only one slot remains at
	// a limit of two.
	assigned, err := assigner.Assign(ctx, 1, 2)
	assert.NoError(t, err)
	assert.Len(t, assigned, 1)

	_, err = assigner.Assign(ctx, 2, 2)
	assert.Error(t, err)
}

func TestAssignInsufficientCapacity(t *testing.T) {
	assigner, gdb := setupAssigner(t)
	ctx := context.Background()

	proxyA := model.Proxy{Host: "10.0.0.1", Port: 3128}
	proxyB := model.Proxy{Host: "10.0.0.2", Port: 3128}
	gdb.Create(&proxyA)
	gdb.Create(&proxyB)
	gdb.Create(&model.Credential{Key: "key1", Proxies: []model.Proxy{proxyA}})
	gdb.Create(&model.Credential{Key: "key2", Proxies: []model.Proxy{proxyB}})

	// Two proxies at limit 2 with one binding each leave two free slots;
	// asking for three falls one slot short, which costs one more proxy.
	_, err := assigner.Assign(ctx, 3, 2)
	var capacityErr *InsufficientCapacityError
	assert.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 3, capacityErr.Requested)
	assert.Equal(t, 2, capacityErr.Free)
	assert.Equal(t, 1, capacityErr.Missing)
}

func TestAssignMissingRoundsUp(t *testing.T) {
	assigner, _ := setupAssigner(t)
	ctx := context.Background()

	// No proxies at all: five credentials at a limit of two need three
	// more proxies.
	_, err := assigner.Assign(ctx, 5, 2)
	var capacityErr *InsufficientCapacityError
	assert.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 0, capacityErr.Free)
	assert.Equal(t, 3, capacityErr.Missing)
}

func TestAssignValidation(t *testing.T) {
	assigner, _ := setupAssigner(t)
	ctx := context.Background()

	assigned, err := assigner.Assign(ctx, 0, 2)
	assert.NoError(t, err)
	assert.Nil(t, assigned)

	_, err = assigner.Assign(ctx, 1, 0)
	assert.Error(t, err)
}
