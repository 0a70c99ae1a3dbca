package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_INTERVAL = 15 * time.Second
	HEALTHCHECK_TIMEOUT  = 2 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorCacheHealth pings the cache on every tick and stores the outcome in
// healthy. Transitions are logged once, not on every tick.
func MonitorCacheHealth(ctx context.Context, cache Pinger, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckCache(ctx, cache, healthy)
		}
	}
}

// CheckCache runs a single ping and reports the new health state.
func CheckCache(ctx context.Context, cache Pinger, healthy *atomic.Bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := cache.Ping(pingCtx)
	isHealthy := err == nil
	if was := healthy.Swap(isHealthy); was != isHealthy {
		if isHealthy {
			slog.Info("[HealthCheck] Cache is healthy again")
		} else {
			slog.Warn("[HealthCheck] Cache is unhealthy, bypassing it", slog.String("error", err.Error()))
		}
	}
	return isHealthy
}
