package cache

import (
	"context"
	"log/slog"
	"time"
)

// Janitor periodically sweeps a MemoryStore so reset tokens and profiles
// that are never read again do not accumulate. Redis expires keys itself.
type Janitor struct {
	store    *MemoryStore
	interval time.Duration
	logger   *slog.Logger
}

func NewJanitor(store *MemoryStore, interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		store:    store,
		interval: interval,
		logger:   logger.With("component", "cache_janitor"),
	}
}

// Start blocks until ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Info("janitor started", "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("janitor shut down")
			return
		case <-ticker.C:
			if n := j.store.Sweep(); n > 0 {
				j.logger.Debug("swept expired cache entries", "count", n)
			}
		}
	}
}
