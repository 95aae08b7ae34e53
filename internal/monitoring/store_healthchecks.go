package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/nairaland/internal/clients"
)

const HEALTHCHECK_TIMER = 15 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckStoreHealth pings once and records the outcome.
func CheckStoreHealth(ctx context.Context, store Pinger, healthy *atomic.Bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, clients.PING_TIMEOUT)
	defer cancel()

	err := store.Ping(pingCtx)
	isHealthy := err == nil
	was := healthy.Swap(isHealthy)
	switch {
	case !isHealthy:
		slog.Warn("[HealthCheck] Store is unhealthy", slog.String("error", err.Error()))
	case !was:
		slog.Info("[HealthCheck] Store is healthy")
	}
	return isHealthy
}

// MonitorStoreHealth checks the store immediately and then on every tick
// until ctx is done.
func MonitorStoreHealth(ctx context.Context, store Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	CheckStoreHealth(ctx, store, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckStoreHealth(ctx, store, healthy)
		}
	}
}
