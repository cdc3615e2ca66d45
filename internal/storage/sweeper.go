package storage

import (
	"context"
	"log/slog"
	"time"
)

// StartSweeper periodically removes scratch directories older than ttl until
// ctx is cancelled
func StartSweeper(ctx context.Context, w Workspace, ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleaned, err := w.Sweep(ttl)
				if err != nil {
					slog.Error("Scratch sweep failed", "error", err)
					continue
				}
				if cleaned > 0 {
					slog.Info("Scratch sweep completed", "directories_cleaned", cleaned)
				}
			}
		}
	}()
	slog.Info("Scratch sweeper started", "interval", ttl)
}
