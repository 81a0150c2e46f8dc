package maintenance

import (
	"context"
	"log/slog"
	"time"

	"wikigame/pkg/db"
)

// DefaultMaxAge bounds how long any cache row survives, expiry or not.
const DefaultMaxAge = 30 * 24 * time.Hour

// Run executes all maintenance tasks once. Failures are logged, never fatal.
func Run(ctx context.Context, d *db.DB, maxAge time.Duration) {
	if ctx.Err() != nil {
		return
	}
	slog.Debug("Starting database maintenance...")

	if n, err := d.PruneExpired(time.Now()); err != nil {
		slog.Error("Expired cache pruning failed", "error", err)
	} else if n > 0 {
		slog.Info("Pruned expired cache entries", "count", n)
	}

	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if n, err := d.PruneCache(maxAge); err != nil {
		slog.Error("Cache pruning failed", "error", err)
	} else if n > 0 {
		slog.Info("Pruned stale cache entries", "count", n, "older_than", maxAge)
	}
}

// Loop runs maintenance immediately and then every interval until ctx is done.
func Loop(ctx context.Context, d *db.DB, interval, maxAge time.Duration) {
	Run(ctx, d, maxAge)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Run(ctx, d, maxAge)
		}
	}
}
