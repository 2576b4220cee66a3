package keypool

import (
	"context"
	"fmt"
	"log/slog"

	"gotube/internal/db"
	"gotube/internal/model"
)

// InsufficientCapacityError is returned when the proxy pool cannot host the
// requested number of new credentials. Missing is how many additional proxies
// would be needed at the given per-proxy limit.
type InsufficientCapacityError struct {
	Requested int
	Free      int
	Missing   int
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("not enough free proxy capacity for %d credentials: %d more proxies required", e.Requested, e.Missing)
}

// Assigner places new credentials onto egress proxies without ever exceeding
// the per-proxy binding limit.
type Assigner struct {
	db     db.Service
	logger *slog.Logger
}

// NewAssigner creates a proxy assigner backed by the given storage service.
func NewAssigner(dbService db.Service, logger *slog.Logger) *Assigner {
	return &Assigner{
		db:     dbService,
		logger: logger.With("component", "proxyassigner"),
	}
}

// Assign picks a proxy for each of n new credentials, first-fit over the
// proxies that still have capacity under perProxyLimit. The returned slice
// has length n; element i is the proxy for the i-th credential. Capacity is
// decremented as credentials are placed, so the limit holds even within one
// batch.
func (a *Assigner) Assign(ctx context.Context, n, perProxyLimit int) ([]model.Proxy, error) {
	if n <= 0 {
		return nil, nil
	}
	if perProxyLimit <= 0 {
		return nil, fmt.Errorf("per-proxy limit must be positive, got %d", perProxyLimit)
	}

	proxies, err := a.db.LoadProxies(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := a.db.ProxyBindingCounts(ctx)
	if err != nil {
		return nil, err
	}

	free := 0
	remaining := make([]int, len(proxies))
	for i, proxy := range proxies {
		capacity := perProxyLimit - counts[proxy.ID]
		if capacity < 0 {
			capacity = 0
		}
		remaining[i] = capacity
		free += capacity
	}

	if free < n {
		missing := (n - free + perProxyLimit - 1) / perProxyLimit
		a.logger.Warn("Proxy pool capacity exhausted", "requested", n, "free", free, "missing", missing)
		return nil, &InsufficientCapacityError{Requested: n, Free: free, Missing: missing}
	}

	assigned := make([]model.Proxy, 0, n)
	for i, proxy := range proxies {
		for remaining[i] > 0 && len(assigned) < n {
			assigned = append(assigned, proxy)
			remaining[i]--
		}
		if len(assigned) == n {
			break
		}
	}
	return assigned, nil
}
