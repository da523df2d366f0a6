package worker

import (
	"context"
	"time"

	"codetrack/internal/app/service"

	"go.uber.org/zap"
)

// SyncWorker periodically re-synchronizes all tracked sheets. Runs are
// sequential; an overlapping manual refresh is safe because upserts are
// idempotent.
type SyncWorker struct {
	mapping  *service.MappingService
	interval time.Duration
	log      *zap.Logger
}

func NewSyncWorker(mapping *service.MappingService, interval time.Duration, log *zap.Logger) *SyncWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncWorker{mapping: mapping, interval: interval, log: log}
}

// Start blocks until ctx is cancelled, running one synchronization pass
// immediately and then one per interval. Intended to run as a goroutine.
func (w *SyncWorker) Start(ctx context.Context) {
	w.log.Info("sync worker started", zap.Duration("interval", w.interval))

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("sync worker stopping")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SyncWorker) runOnce(ctx context.Context) {
	if err := w.mapping.SyncAll(ctx); err != nil {
		w.log.Error("scheduled synchronization failed", zap.Error(err))
	}
}
